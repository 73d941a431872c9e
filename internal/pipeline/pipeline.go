package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"assetcli/internal/config"
	"assetcli/internal/errors"
	"assetcli/internal/infrastructure"
)

// Pipeline is the report cleanup pipeline. Instances are cheap and hold no
// per-run state; concurrent invocations must each construct their own run
// via Process, which shares nothing mutable.
type Pipeline struct {
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// Result is the outcome of one successful run.
type Result struct {
	// Output is the cleaned workbook, serialized.
	Output []byte
	// Region is the final table region including header and summary rows.
	Region TableRegion
	// RowsKept and RowsDropped count the transformer's filtering.
	RowsKept    int
	RowsDropped int
	// Warnings are the non-fatal per-row issues accumulated during the run.
	Warnings []Warning
}

// New creates a pipeline with the given configuration.
func New(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Process runs the four stages over the raw workbook bytes and returns the
// cleaned workbook bytes. asOf is the explicit clock for date-relative
// derived fields and highlight thresholds; given identical input bytes and
// an identical asOf, the output is byte-identical. The context carries
// logging metadata only; the pipeline has no interruptible internal waits.
func (p *Pipeline) Process(ctx context.Context, content []byte, asOf time.Time) (*Result, error) {
	start := time.Now()
	logger := p.logger
	if ctx != nil {
		if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
			logger = logger.With(slog.String("trace_id", traceID))
		}
	}

	loaded, err := p.load(content)
	if err != nil {
		return nil, err
	}

	cleaned, warnings, err := p.transform(loaded, asOf)
	if err != nil {
		return nil, err
	}

	out := excelize.NewFile()
	defer out.Close()

	region, err := p.render(out, DefaultSchema(), cleaned)
	if err != nil {
		return nil, err
	}

	region, err = p.format(out, DefaultSchema(), cleaned, region, asOf)
	if err != nil {
		return nil, err
	}

	buf, err := out.WriteToBuffer()
	if err != nil {
		return nil, errors.NewRenderError("The cleaned workbook could not be serialized.", err)
	}

	logger.Info("report cleaned",
		slog.String("sheet", loaded.sheet),
		slog.Int("rows_kept", len(cleaned)),
		slog.Int("rows_dropped", len(loaded.rows)-len(cleaned)),
		slog.Int("warnings", len(warnings)),
		slog.Duration("elapsed", time.Since(start)))

	return &Result{
		Output:      buf.Bytes(),
		Region:      region,
		RowsKept:    len(cleaned),
		RowsDropped: len(loaded.rows) - len(cleaned),
		Warnings:    warnings,
	}, nil
}
