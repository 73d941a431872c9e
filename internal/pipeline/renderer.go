package pipeline

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"assetcli/internal/errors"
)

const (
	// OutputSheet is the single sheet name of the cleaned workbook.
	OutputSheet = "Asset Report"
	// TableName is the display name of the rendered table.
	TableName = "AssetReport"
	// tableStyle is the fixed named style: banded rows, header emphasis.
	tableStyle = "TableStyleMedium2"
)

// render writes the header row and one row per CleanedRow in schema column
// order, registers the written range as a styled table, and applies
// per-column number formats. Column formats are applied after table styling
// so they take precedence over the table's cell formats.
func (p *Pipeline) render(f *excelize.File, schema OutputSchema, rows []CleanedRow) (TableRegion, error) {
	f.SetSheetName(f.GetSheetName(0), OutputSheet)

	for c, col := range schema.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return TableRegion{}, errors.NewRenderError("Failed to address the header row.", err)
		}
		if err := f.SetCellValue(OutputSheet, cell, col.Header); err != nil {
			return TableRegion{}, errors.NewRenderError("Failed to write the header row.", err)
		}
	}

	for r, row := range rows {
		for c, col := range schema.Columns {
			value := row[col.Field]
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return TableRegion{}, errors.NewRenderError("Failed to address a data cell.", err)
			}
			if err := f.SetCellValue(OutputSheet, cell, value); err != nil {
				return TableRegion{}, errors.NewRenderError("Failed to write a data cell.", err)
			}
		}
	}

	region := TableRegion{
		StartRow: 1,
		StartCol: 1,
		EndRow:   len(rows) + 1,
		EndCol:   len(schema.Columns),
	}

	ref, err := region.Ref()
	if err != nil {
		return TableRegion{}, errors.NewRenderError("Failed to compute the table range.", err)
	}

	stripes := true
	if err := f.AddTable(OutputSheet, &excelize.Table{
		Range:          ref,
		Name:           TableName,
		StyleName:      tableStyle,
		ShowRowStripes: &stripes,
	}); err != nil {
		return TableRegion{}, errors.NewRenderError("Failed to register the report table.", err)
	}

	if err := p.applyColumnFormats(f, schema, region); err != nil {
		return TableRegion{}, err
	}

	return region, nil
}

// applyColumnFormats sets each column's number/date format over its data
// rows. Must run after AddTable; table styling would otherwise clobber the
// requested cell formats.
func (p *Pipeline) applyColumnFormats(f *excelize.File, schema OutputSchema, region TableRegion) error {
	if region.EndRow <= region.StartRow {
		return nil
	}
	for c, col := range schema.Columns {
		if col.NumFmt == "" {
			continue
		}
		numFmt := col.NumFmt
		styleID, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return errors.NewRenderError(fmt.Sprintf("Failed to build the %s column format.", col.Header), err)
		}
		top, err := excelize.CoordinatesToCellName(region.StartCol+c, region.StartRow+1)
		if err != nil {
			return errors.NewRenderError("Failed to address a column range.", err)
		}
		bottom, err := excelize.CoordinatesToCellName(region.StartCol+c, region.EndRow)
		if err != nil {
			return errors.NewRenderError("Failed to address a column range.", err)
		}
		if err := f.SetCellStyle(OutputSheet, top, bottom, styleID); err != nil {
			return errors.NewRenderError(fmt.Sprintf("Failed to apply the %s column format.", col.Header), err)
		}
	}
	return nil
}
