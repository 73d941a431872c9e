package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"assetcli/internal/config"
	"assetcli/internal/infrastructure"
	"assetcli/internal/pipeline"
)

func main() {
	in := flag.String("in", "", "input .xlsx asset report")
	out := flag.String("out", "", "output path for the cleaned workbook (defaults to cleaned_<in>)")
	asOfFlag := flag.String("as-of", "", "clock for date-derived fields, YYYY-MM-DD (defaults to today)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: cleaner -in report.xlsx [-out cleaned.xlsx] [-as-of 2026-01-31]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := infrastructure.InitializeLogger(cfg.Logging)

	asOf := time.Now()
	if *asOfFlag != "" {
		asOf, err = time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			logger.Error("Invalid -as-of date", "value", *asOfFlag, "error", err)
			os.Exit(2)
		}
	}

	content, err := os.ReadFile(*in)
	if err != nil {
		logger.Error("Failed to read input file", "path", *in, "error", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg.Pipeline, logger)
	result, err := p.Process(context.Background(), content, asOf)
	if err != nil {
		logger.Error("Cleanup failed", "error", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(*in), "cleaned_"+filepath.Base(*in))
	}
	if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
		logger.Error("Failed to write output file", "path", outPath, "error", err)
		os.Exit(1)
	}

	for _, w := range result.Warnings {
		logger.Warn("cleanup warning", "row", w.Row, "field", w.Field, "message", w.Message)
	}
	logger.Info("cleaned report written",
		"path", outPath,
		"rows_kept", result.RowsKept,
		"rows_dropped", result.RowsDropped,
		"warnings", len(result.Warnings))
}
