// Package pipeline implements the report cleanup pipeline: it ingests a raw
// asset-report workbook and produces a cleaned, formatted workbook with
// normalized columns, a styled table, conditional-formatting highlights, and
// summary rows.
//
// # Architecture
//
// One invocation runs four stages strictly in sequence over a single
// in-memory workbook:
//
//  1. Loader: opens the raw workbook, locates the source sheet and header
//     row, and builds the canonical column mapping
//  2. Transformer: normalizes cell values, derives computed fields, drops
//     rows without an asset identifier, and orders the survivors by
//     expiration date
//  3. Table Renderer: writes the cleaned rows into a styled Excel table
//  4. Formatting & Summary pass: appends summary rows, applies
//     conditional formats off the final table region, auto-sizes columns,
//     and writes the per-quarter renewal schedule sheet
//
// # Usage
//
//	p := pipeline.New(config.DefaultPipeline(), slog.Default())
//	result, err := p.Process(ctx, rawBytes, time.Now())
//	if err != nil {
//	    // errors.IsSchemaError / IsEmptyResultError / IsReadError
//	}
//	os.WriteFile("cleaned.xlsx", result.Output, 0o644)
//
// # Determinism
//
// The pipeline never reads ambient time. All date-relative derivations and
// highlight thresholds use the asOf parameter, so re-running with a fixed
// clock on the same input bytes produces identical output.
//
// # Error Handling
//
// Structural problems (unrecognizable header, missing required columns)
// abort the run with a schema error. Per-row issues (a bad date, text in a
// numeric column) are downgraded to warnings on the successful result and
// the offending value becomes null. Only a workbook with zero surviving
// rows fails after loading, with an empty-result error.
package pipeline
