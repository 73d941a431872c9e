package pipeline

import (
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"assetcli/internal/errors"
)

const (
	// ScheduleSheet holds the per-quarter renewal counts.
	ScheduleSheet = "Renewal Schedule"
	// ScheduleTableName is the display name of the schedule table.
	ScheduleTableName = "RenewalSchedule"
	// scheduleTableStyle distinguishes the schedule from the main table.
	scheduleTableStyle = "TableStyleMedium12"
)

// quarterCounts tallies cleaned rows per derived renewal quarter. Quarters
// come back sorted ascending; the "YYYY Qn" form orders lexicographically.
func quarterCounts(rows []CleanedRow) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, row := range rows {
		q, ok := row[FieldRenewalQuarter].(string)
		if !ok || q == "" {
			continue
		}
		counts[q]++
	}
	quarters := make([]string, 0, len(counts))
	for q := range counts {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)
	return quarters, counts
}

// writeRenewalSchedule adds a second sheet with one row per renewal quarter
// and the number of assets renewing in it, registered as its own styled
// table. Skipped entirely when no row carries a renewal quarter.
func (p *Pipeline) writeRenewalSchedule(f *excelize.File, rows []CleanedRow) error {
	quarters, counts := quarterCounts(rows)
	if len(quarters) == 0 {
		return nil
	}

	if _, err := f.NewSheet(ScheduleSheet); err != nil {
		return errors.NewRenderError("Failed to create the renewal schedule sheet.", err)
	}

	headers := []string{"Quarter", "Assets"}
	for c, header := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return errors.NewRenderError("Failed to address the renewal schedule header.", err)
		}
		if err := f.SetCellValue(ScheduleSheet, cell, header); err != nil {
			return errors.NewRenderError("Failed to write the renewal schedule header.", err)
		}
	}

	for i, quarter := range quarters {
		row := i + 2
		quarterCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return errors.NewRenderError("Failed to address a renewal schedule row.", err)
		}
		countCell, err := excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return errors.NewRenderError("Failed to address a renewal schedule row.", err)
		}
		if err := f.SetCellValue(ScheduleSheet, quarterCell, quarter); err != nil {
			return errors.NewRenderError("Failed to write a renewal schedule row.", err)
		}
		if err := f.SetCellValue(ScheduleSheet, countCell, counts[quarter]); err != nil {
			return errors.NewRenderError("Failed to write a renewal schedule row.", err)
		}
	}

	end, err := excelize.CoordinatesToCellName(len(headers), len(quarters)+1)
	if err != nil {
		return errors.NewRenderError("Failed to compute the renewal schedule range.", err)
	}
	stripes := true
	if err := f.AddTable(ScheduleSheet, &excelize.Table{
		Range:          "A1:" + end,
		Name:           ScheduleTableName,
		StyleName:      scheduleTableStyle,
		ShowRowStripes: &stripes,
	}); err != nil {
		return errors.NewRenderError("Failed to register the renewal schedule table.", err)
	}

	widths := []int{len(headers[0]), len(headers[1])}
	for _, quarter := range quarters {
		if len(quarter) > widths[0] {
			widths[0] = len(quarter)
		}
		if n := len(strconv.Itoa(counts[quarter])); n > widths[1] {
			widths[1] = n
		}
	}
	for c, maxLen := range widths {
		width := float64(maxLen) + 2
		if width < p.cfg.MinColumnWidth {
			width = p.cfg.MinColumnWidth
		}
		if width > p.cfg.MaxColumnWidth {
			width = p.cfg.MaxColumnWidth
		}
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return errors.NewRenderError("Failed to address a renewal schedule column.", err)
		}
		if err := f.SetColWidth(ScheduleSheet, name, name, width); err != nil {
			return errors.NewRenderError("Failed to size a renewal schedule column.", err)
		}
	}
	return nil
}
