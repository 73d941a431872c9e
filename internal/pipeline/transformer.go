package pipeline

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"assetcli/internal/errors"
)

// Warning is a non-fatal per-row issue accumulated during transformation.
// Warnings ride along with a successful result and never block it.
type Warning struct {
	Row     int    `json:"row"` // 1-based source sheet row
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// excelEpoch is the zero day of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// transform maps each raw row through the column mapping into a CleanedRow,
// applying per-field normalization and computing derived fields off asOf.
// Rows without an asset identifier are dropped and counted; every other
// field-level issue nulls the value and records a warning.
func (p *Pipeline) transform(loaded *loadResult, asOf time.Time) ([]CleanedRow, []Warning, error) {
	schema := DefaultSchema()
	var cleaned []CleanedRow
	var warnings []Warning
	dropped := 0

	for i, raw := range loaded.rows {
		sheetRow := loaded.rowBase + i

		assetID := cellText(raw, loaded.mapping, FieldAssetID)
		if assetID == "" {
			dropped++
			continue
		}

		row := make(CleanedRow, len(schema.Columns))
		row[FieldAssetID] = assetID
		row[FieldAssetName] = nullableText(cellText(raw, loaded.mapping, FieldAssetName))
		row[FieldCategory] = nullableText(cellText(raw, loaded.mapping, FieldCategory))

		acquired, w := parseDateField(raw, loaded.mapping, FieldAcquiredDate, sheetRow)
		if w != nil {
			warnings = append(warnings, *w)
		}
		row[FieldAcquiredDate] = acquired

		expires, w := parseDateField(raw, loaded.mapping, FieldExpiresDate, sheetRow)
		if w != nil {
			warnings = append(warnings, *w)
		}
		row[FieldExpiresDate] = expires

		value, w := parseNumberField(raw, loaded.mapping, FieldValue, sheetRow)
		if w != nil {
			warnings = append(warnings, *w)
		}
		row[FieldValue] = value

		// Derived fields: a null input yields a null output, never an error.
		row[FieldRenewalQuarter] = deriveQuarter(expires)
		row[FieldAgeDays] = deriveAgeDays(acquired, asOf)

		cleaned = append(cleaned, row)
	}

	if dropped > 0 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("%d row(s) without an asset identifier were dropped", dropped),
		})
	}

	if len(cleaned) == 0 {
		return nil, nil, errors.NewEmptyResultError("No usable asset rows were found in the report.")
	}

	// The report is a renewal-planning view: rows are ordered by expiration
	// date, soonest first. Rows without an expiration sort last, keeping
	// source order among themselves.
	sort.SliceStable(cleaned, func(i, j int) bool {
		a, aok := cleaned[i][FieldExpiresDate].(time.Time)
		b, bok := cleaned[j][FieldExpiresDate].(time.Time)
		if aok && bok {
			return a.Before(b)
		}
		return aok && !bok
	})

	p.logger.Debug("rows transformed",
		slog.Int("kept", len(cleaned)),
		slog.Int("dropped", dropped),
		slog.Int("warnings", len(warnings)))

	return cleaned, warnings, nil
}

// cellText reads the raw cell for field, trimmed. Rows from GetRows may be
// shorter than the header, so missing trailing cells read as empty.
func cellText(raw []string, mapping ColumnMapping, field Field) string {
	idx, ok := mapping[field]
	if !ok || idx >= len(raw) {
		return ""
	}
	return strings.TrimSpace(raw[idx])
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseDateField(raw []string, mapping ColumnMapping, field Field, sheetRow int) (any, *Warning) {
	text := cellText(raw, mapping, field)
	if text == "" {
		return nil, nil
	}
	dt, ok := parseDate(text)
	if !ok {
		return nil, &Warning{
			Row:     sheetRow,
			Field:   string(field),
			Message: fmt.Sprintf("%q is not a recognizable date", text),
		}
	}
	return dt, nil
}

func parseNumberField(raw []string, mapping ColumnMapping, field Field, sheetRow int) (any, *Warning) {
	text := cellText(raw, mapping, field)
	if text == "" {
		return nil, nil
	}
	n, ok := parseNumber(text)
	if !ok {
		return nil, &Warning{
			Row:     sheetRow,
			Field:   string(field),
			Message: fmt.Sprintf("%q is not numeric", text),
		}
	}
	return n, nil
}

// dateLayouts are the accepted text date layouts, tried after normalizing
// "-" separators to "/".
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006/1/2",
	"1/2/2006 15:04:05",
	"2006/1/2 15:04:05",
}

// parseDate parses a cell's text as a date: either a common text layout or
// an Excel serial number.
func parseDate(text string) (time.Time, bool) {
	normalized := strings.ReplaceAll(text, "-", "/")
	for _, layout := range dateLayouts {
		if dt, err := time.Parse(layout, normalized); err == nil {
			return dt, true
		}
	}
	// Formatted date cells can surface as raw serial numbers.
	if serial, err := strconv.ParseFloat(text, 64); err == nil && serial > 0 && serial < 300000 {
		return excelEpoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

// parseNumber coerces a cell's text to a float, tolerating thousands
// separators and a leading currency sign.
func parseNumber(text string) (float64, bool) {
	s := strings.ReplaceAll(text, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// deriveQuarter renders a date as "YYYY Qn" for the renewal schedule.
func deriveQuarter(value any) any {
	dt, ok := value.(time.Time)
	if !ok {
		return nil
	}
	quarter := (int(dt.Month())-1)/3 + 1
	return fmt.Sprintf("%d Q%d", dt.Year(), quarter)
}

// deriveAgeDays computes whole days from the acquisition date to asOf.
func deriveAgeDays(value any, asOf time.Time) any {
	dt, ok := value.(time.Time)
	if !ok {
		return nil
	}
	from := time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return float64(int(to.Sub(from).Hours() / 24))
}
