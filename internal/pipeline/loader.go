package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"assetcli/internal/errors"
)

// headerVocabulary maps normalized header texts to the canonical field they
// identify. Matching is case-insensitive on trimmed, space-collapsed text.
var headerVocabulary = map[string]Field{
	"id":                   FieldAssetID,
	"asset id":             FieldAssetID,
	"asset #":              FieldAssetID,
	"asset tag":            FieldAssetID,
	"tag":                  FieldAssetID,
	"unit id":              FieldAssetID,
	"name":                 FieldAssetName,
	"asset name":           FieldAssetName,
	"unit name":            FieldAssetName,
	"description":          FieldAssetName,
	"category":             FieldCategory,
	"asset type":           FieldCategory,
	"type":                 FieldCategory,
	"class":                FieldCategory,
	"acquired":             FieldAcquiredDate,
	"acquired date":        FieldAcquiredDate,
	"acquisition date":     FieldAcquiredDate,
	"registration date":    FieldAcquiredDate,
	"purchase date":        FieldAcquiredDate,
	"expires":              FieldExpiresDate,
	"expiration":           FieldExpiresDate,
	"expiration date":      FieldExpiresDate,
	"unit expiration date": FieldExpiresDate,
	"renewal date":         FieldExpiresDate,
	"value":                FieldValue,
	"cost":                 FieldValue,
	"amount":               FieldValue,
	"book value":           FieldValue,
	"unit value":           FieldValue,
}

// requiredFields are the canonical fields whose header must be present in the
// source. Per-row nullability is a transformer concern; this is purely
// structural.
var requiredFields = []Field{FieldAssetID, FieldAcquiredDate, FieldValue}

// loadResult is the loader's output: the data rows below the header and the
// canonical column mapping.
type loadResult struct {
	sheet     string
	headerRow int        // zero-based index into the sheet's rows
	rows      [][]string // data rows only, in source order
	rowBase   int        // 1-based sheet row number of the first data row
	mapping   ColumnMapping
}

// load opens the raw workbook bytes, locates the source sheet and header row,
// and validates that every required column is present.
func (p *Pipeline) load(content []byte) (*loadResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.NewReadError("The uploaded file could not be read as an Excel workbook.", err)
	}
	defer f.Close()

	sheet, rows, err := p.findSourceSheet(f)
	if err != nil {
		return nil, err
	}

	headerRow, mapping := p.findHeaderRow(rows)
	if headerRow < 0 {
		return nil, errors.NewSchemaError(fmt.Sprintf(
			"No header row was recognized in the first %d rows of sheet %q.", p.cfg.HeaderScanRows, sheet))
	}

	schema := DefaultSchema()
	for _, field := range requiredFields {
		if _, ok := mapping[field]; !ok {
			col, _ := schema.Column(field)
			return nil, errors.NewMissingColumnError(col.Header)
		}
	}

	// Data runs from the row below the header to the first fully-empty row
	// or sheet end.
	var data [][]string
	for i := headerRow + 1; i < len(rows); i++ {
		if rowIsEmpty(rows[i]) {
			break
		}
		data = append(data, rows[i])
	}

	p.logger.Debug("workbook loaded",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerRow+1),
		slog.Int("data_rows", len(data)),
		slog.Int("mapped_columns", len(mapping)))

	return &loadResult{
		sheet:     sheet,
		headerRow: headerRow,
		rows:      data,
		rowBase:   headerRow + 2,
		mapping:   mapping,
	}, nil
}

// findSourceSheet picks the sheet of interest: the configured name when set,
// otherwise the first sheet containing a recognizable header row, falling
// back to the active sheet.
func (p *Pipeline) findSourceSheet(f *excelize.File) (string, [][]string, error) {
	if p.cfg.SheetName != "" {
		rows, err := f.GetRows(p.cfg.SheetName)
		if err != nil {
			return "", nil, errors.NewSchemaError(fmt.Sprintf("Sheet %q was not found in the workbook.", p.cfg.SheetName))
		}
		return p.cfg.SheetName, rows, nil
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if headerRow, _ := p.findHeaderRow(rows); headerRow >= 0 {
			return name, rows, nil
		}
	}

	active := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(active)
	if err != nil {
		return "", nil, errors.NewReadError("The workbook's active sheet could not be read.", err)
	}
	return active, rows, nil
}

// findHeaderRow scans the first HeaderScanRows rows for a row whose cell
// texts intersect the header vocabulary at or above the configured
// threshold. Returns the zero-based row index and the column mapping built
// from that row, or -1 when no row qualifies. The first matching header text
// wins when a field appears more than once.
func (p *Pipeline) findHeaderRow(rows [][]string) (int, ColumnMapping) {
	limit := p.cfg.HeaderScanRows
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		mapping := make(ColumnMapping)
		for j, cell := range rows[i] {
			field, ok := headerVocabulary[normalizeHeader(cell)]
			if !ok {
				continue
			}
			if _, seen := mapping[field]; !seen {
				mapping[field] = j
			}
		}
		if len(mapping) >= p.cfg.HeaderMatchThreshold {
			return i, mapping
		}
	}
	return -1, nil
}

// normalizeHeader lowercases, trims, and collapses interior whitespace so
// header matching tolerates the usual spreadsheet sloppiness.
func normalizeHeader(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
