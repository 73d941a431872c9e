package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"assetcli/internal/errors"
)

// format runs the formatting and summary pass. Order matters: summary rows
// change the TableRegion's dimensions, so conditional-format resolution and
// auto-sizing must read the recomputed region, never a stale one.
func (p *Pipeline) format(f *excelize.File, schema OutputSchema, rows []CleanedRow, region TableRegion, asOf time.Time) (TableRegion, error) {
	region, summaryCount, err := p.writeSummary(f, schema, rows, region)
	if err != nil {
		return region, err
	}
	if err := p.applyFormatRules(f, schema, region, summaryCount, asOf); err != nil {
		return region, err
	}
	if err := p.autoSize(f, schema, rows, region); err != nil {
		return region, err
	}
	if err := p.writeRenewalSchedule(f, rows); err != nil {
		return region, err
	}
	return region, nil
}

// summaryValues computes the per-column aggregate for the summary row; nil
// for columns with no aggregation policy. Aggregates are computed from the
// cleaned rows, not read back from the sheet.
func summaryValues(schema OutputSchema, rows []CleanedRow) []any {
	values := make([]any, len(schema.Columns))
	for c, col := range schema.Columns {
		switch col.Aggregate {
		case AggregateCount:
			n := 0
			for _, row := range rows {
				if row[col.Field] != nil {
					n++
				}
			}
			values[c] = float64(n)
		case AggregateSum:
			sum := 0.0
			for _, row := range rows {
				if v, ok := row[col.Field].(float64); ok {
					sum += v
				}
			}
			values[c] = sum
		}
	}
	return values
}

// writeSummary appends the summary row immediately below the last data row,
// styled distinctly from data rows, and returns the recomputed region.
func (p *Pipeline) writeSummary(f *excelize.File, schema OutputSchema, rows []CleanedRow, region TableRegion) (TableRegion, int, error) {
	if !schema.HasSummary() {
		return region, 0, nil
	}

	summaryRow := region.EndRow + 1
	values := summaryValues(schema, rows)

	for c, col := range schema.Columns {
		cell, err := excelize.CoordinatesToCellName(region.StartCol+c, summaryRow)
		if err != nil {
			return region, 0, errors.NewRenderError("Failed to address the summary row.", err)
		}
		if values[c] != nil {
			if err := f.SetCellValue(OutputSheet, cell, values[c]); err != nil {
				return region, 0, errors.NewRenderError("Failed to write the summary row.", err)
			}
		}

		style := excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Border: []excelize.Border{{Type: "top", Style: 6, Color: "366092"}},
		}
		if col.NumFmt != "" && col.Kind == KindNumber {
			numFmt := col.NumFmt
			style.CustomNumFmt = &numFmt
		}
		styleID, err := f.NewStyle(&style)
		if err != nil {
			return region, 0, errors.NewRenderError("Failed to build the summary style.", err)
		}
		if err := f.SetCellStyle(OutputSheet, cell, cell, styleID); err != nil {
			return region, 0, errors.NewRenderError("Failed to style the summary row.", err)
		}
	}

	region.EndRow = summaryRow
	return region, 1, nil
}

// Highlight palette, matching the classic Excel "Bad" / "Neutral" / "Good"
// cell styles plus a grey needs-review style.
func badStyle() excelize.Style {
	return excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	}
}

func neutralStyle() excelize.Style {
	return excelize.Style{
		Font: &excelize.Font{Color: "9C5700"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFEB9C"}, Pattern: 1},
	}
}

func goodStyle() excelize.Style {
	return excelize.Style{
		Font: &excelize.Font{Color: "006100"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	}
}

func checkStyle() excelize.Style {
	return excelize.Style{
		Font: &excelize.Font{Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"7F7F7F"}, Pattern: 1},
	}
}

// defaultFormatRules builds the conditional-formatting rule set. Expiration
// year bands are evaluated against the injected clock year rather than
// TODAY() so output bytes are deterministic under a fixed clock. All spans
// are region-relative; LastDataRow 0 means through the last data row.
func defaultFormatRules(year int) []FormatRule {
	expires := func(op string, offset int) func(string) string {
		return func(cell string) string {
			return fmt.Sprintf("AND(ISNUMBER(%s),YEAR(%s)%s%d)", cell, cell, op, year+offset)
		}
	}
	// Quarter cells hold "YYYY Qn" text or nothing. VALUE(LEFT(...)) is a
	// #VALUE! error on a blank cell and OR does not short-circuit over error
	// arguments, so the year extraction is wrapped in IFERROR; a blank cell
	// then reads as year 0 and lands in the check band.
	quarterYear := func(cell string) string {
		return fmt.Sprintf("IFERROR(VALUE(LEFT(%s,4)),0)", cell)
	}

	return []FormatRule{
		// Expires: blank or already past wants review; then current-year,
		// next-year, and later bands.
		{
			Field:      FieldExpiresDate,
			Formula:    func(cell string) string { return fmt.Sprintf("OR(NOT(ISNUMBER(%s)),YEAR(%s)<%d)", cell, cell, year) },
			Style:      checkStyle(),
			StopIfTrue: true,
		},
		{Field: FieldExpiresDate, Formula: expires("=", 0), Style: badStyle(), StopIfTrue: true},
		{Field: FieldExpiresDate, Formula: expires("=", 1), Style: neutralStyle(), StopIfTrue: true},
		{Field: FieldExpiresDate, Formula: expires(">=", 2), Style: goodStyle(), StopIfTrue: true},

		// Renewal quarter mirrors the expiration bands off its "YYYY Qn" text.
		{
			Field:      FieldRenewalQuarter,
			Formula:    func(cell string) string { return fmt.Sprintf("OR(%s=\"\",%s<%d)", cell, quarterYear(cell), year) },
			Style:      checkStyle(),
			StopIfTrue: true,
		},
		{
			Field:      FieldRenewalQuarter,
			Formula:    func(cell string) string { return fmt.Sprintf("%s=%d", quarterYear(cell), year) },
			Style:      badStyle(),
			StopIfTrue: true,
		},
		{
			Field:      FieldRenewalQuarter,
			Formula:    func(cell string) string { return fmt.Sprintf("%s=%d", quarterYear(cell), year+1) },
			Style:      neutralStyle(),
			StopIfTrue: true,
		},
		{
			Field:      FieldRenewalQuarter,
			Formula:    func(cell string) string { return fmt.Sprintf("%s>=%d", quarterYear(cell), year+2) },
			Style:      goodStyle(),
			StopIfTrue: true,
		},

		// Negative book values are flagged red.
		{Field: FieldValue, Criteria: "<", Value: "0", Style: badStyle()},
	}
}

// applyFormatRules translates each rule's region-relative row span into
// absolute sheet coordinates using the current region boundaries and applies
// the conditional format. This runs after summary insertion; resolving
// against a pre-summary region would land formats on the wrong rows.
func (p *Pipeline) applyFormatRules(f *excelize.File, schema OutputSchema, region TableRegion, summaryCount int, asOf time.Time) error {
	dataStart := region.StartRow + 1
	dataEnd := region.EndRow - summaryCount
	if dataEnd < dataStart {
		return nil
	}

	type resolved struct {
		ref  string
		opts []excelize.ConditionalFormatOptions
	}
	var groups []*resolved
	byRef := make(map[string]*resolved)

	for _, rule := range defaultFormatRules(asOf.Year()) {
		colIdx := schema.ColumnIndex(rule.Field)
		if colIdx < 0 {
			continue
		}

		first := dataStart
		if rule.FirstDataRow > 1 {
			first = dataStart + rule.FirstDataRow - 1
		}
		last := dataEnd
		if rule.LastDataRow > 0 {
			last = dataStart + rule.LastDataRow - 1
		}
		// Clamp to the data span so no rule can escape the region.
		if last > dataEnd {
			last = dataEnd
		}
		if first < dataStart || first > last {
			continue
		}

		col := region.StartCol + colIdx
		firstCell, err := excelize.CoordinatesToCellName(col, first)
		if err != nil {
			return errors.NewRenderError("Failed to address a highlight range.", err)
		}
		lastCell, err := excelize.CoordinatesToCellName(col, last)
		if err != nil {
			return errors.NewRenderError("Failed to address a highlight range.", err)
		}
		ref := firstCell + ":" + lastCell

		style := rule.Style
		styleID, err := f.NewConditionalStyle(&style)
		if err != nil {
			return errors.NewRenderError("Failed to build a highlight style.", err)
		}

		opt := excelize.ConditionalFormatOptions{
			Format:     &styleID,
			StopIfTrue: rule.StopIfTrue,
		}
		if rule.Formula != nil {
			opt.Type = "formula"
			opt.Criteria = rule.Formula(firstCell)
		} else {
			opt.Type = "cell"
			opt.Criteria = rule.Criteria
			opt.Value = rule.Value
		}

		group, ok := byRef[ref]
		if !ok {
			group = &resolved{ref: ref}
			byRef[ref] = group
			groups = append(groups, group)
		}
		group.opts = append(group.opts, opt)
	}

	// One SetConditionalFormat call per range keeps rule priority in
	// declaration order.
	for _, group := range groups {
		if err := f.SetConditionalFormat(OutputSheet, group.ref, group.opts); err != nil {
			return errors.NewRenderError("Failed to apply conditional formatting.", err)
		}
	}
	return nil
}

// autoSize sets each column's width from the maximum rendered character
// width across header, data, and summary cells, clamped to the configured
// bounds. Widths are proportional character units, not pixel-exact; visual
// adequacy is the bar.
func (p *Pipeline) autoSize(f *excelize.File, schema OutputSchema, rows []CleanedRow, region TableRegion) error {
	summary := summaryValues(schema, rows)

	for c, col := range schema.Columns {
		maxLen := len(col.Header)
		for _, row := range rows {
			if n := len(displayText(col, row[col.Field])); n > maxLen {
				maxLen = n
			}
		}
		if summary[c] != nil {
			if n := len(displayText(col, summary[c])); n > maxLen {
				maxLen = n
			}
		}

		width := float64(maxLen) + 2
		if width < p.cfg.MinColumnWidth {
			width = p.cfg.MinColumnWidth
		}
		if width > p.cfg.MaxColumnWidth {
			width = p.cfg.MaxColumnWidth
		}

		name, err := excelize.ColumnNumberToName(region.StartCol + c)
		if err != nil {
			return errors.NewRenderError("Failed to address a column for sizing.", err)
		}
		if err := f.SetColWidth(OutputSheet, name, name, width); err != nil {
			return errors.NewRenderError("Failed to set a column width.", err)
		}
	}
	return nil
}

// displayText approximates the rendered width of a cell: dates and numbers
// are measured in their display format, not their raw value.
func displayText(col Column, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return fmt.Sprintf("%d/%d/%02d", int(v.Month()), v.Day(), v.Year()%100)
	case float64:
		if strings.Contains(col.NumFmt, ".") {
			return formatThousands(fmt.Sprintf("%.2f", v))
		}
		return formatThousands(fmt.Sprintf("%.0f", v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatThousands inserts comma separators into a formatted decimal string.
func formatThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
