package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"iso", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"us slash", "3/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"us short year", "3/15/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"zero padded", "01/05/2021", time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"with time", "2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), true},
		{"excel serial", "45000", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"not a date", "not-a-date", time.Time{}, false},
		{"empty-ish", "--", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"1,234.56", 1234.56, true},
		{"$2,500", 2500, true},
		{"-42.5", -42.5, true},
		{"n/a", 0, false},
		{"12x", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		require.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestDeriveQuarter(t *testing.T) {
	assert.Equal(t, "2024 Q2", deriveQuarter(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026 Q1", deriveQuarter(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026 Q4", deriveQuarter(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, deriveQuarter(nil))
}

func TestDeriveAgeDays(t *testing.T) {
	asOf := time.Date(2026, 8, 25, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, float64(0), deriveAgeDays(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), asOf))
	assert.Equal(t, float64(7), deriveAgeDays(time.Date(2026, 8, 18, 23, 59, 0, 0, time.UTC), asOf))
	assert.Nil(t, deriveAgeDays(nil, asOf))
}

func TestTransformDropsOnlyRowsWithoutID(t *testing.T) {
	p := newTestPipeline(t)

	loaded := &loadResult{
		rowBase: 2,
		mapping: ColumnMapping{FieldAssetID: 0, FieldAcquiredDate: 1, FieldValue: 2},
		rows: [][]string{
			{"A1", "2021-01-05", "100"},
			{"", "2022-02-02", "200"},
			{"A3", "bad-date", "not-a-number"},
		},
	}

	cleaned, warnings, err := p.transform(loaded, fixedClock)
	require.NoError(t, err)
	require.Len(t, cleaned, 2)

	// A3 survived with nulled fields and two warnings; the drop produced a
	// third, row-less warning.
	assert.Equal(t, "A3", cleaned[1][FieldAssetID])
	assert.Nil(t, cleaned[1][FieldAcquiredDate])
	assert.Nil(t, cleaned[1][FieldValue])

	require.Len(t, warnings, 3)
	assert.Equal(t, 4, warnings[0].Row)
	assert.Equal(t, 4, warnings[1].Row)
	assert.Zero(t, warnings[2].Row)
	assert.Contains(t, warnings[2].Message, "dropped")
}

func TestTransformEveryFieldPresent(t *testing.T) {
	p := newTestPipeline(t)

	loaded := &loadResult{
		rowBase: 2,
		mapping: ColumnMapping{FieldAssetID: 0, FieldAcquiredDate: 1, FieldValue: 2},
		rows:    [][]string{{"A1", "2021-01-05", "100"}},
	}

	cleaned, _, err := p.transform(loaded, fixedClock)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)

	for _, col := range DefaultSchema().Columns {
		_, present := cleaned[0][col.Field]
		assert.True(t, present, "field %s missing from cleaned row", col.Field)
	}

	// Derived fields computed off the injected clock.
	assert.Equal(t, "2021 Q1", deriveQuarter(cleaned[0][FieldAcquiredDate].(time.Time)))
	age := cleaned[0][FieldAgeDays].(float64)
	assert.Equal(t, float64(2058), age) // 2021-01-05 .. 2026-08-25
}

func TestTransformOrdersRowsByExpiration(t *testing.T) {
	p := newTestPipeline(t)

	loaded := &loadResult{
		rowBase: 2,
		mapping: ColumnMapping{FieldAssetID: 0, FieldAcquiredDate: 1, FieldExpiresDate: 2, FieldValue: 3},
		rows: [][]string{
			{"A1", "2021-01-05", "2028-06-30", "100"},
			{"A2", "2021-02-06", "", "50"},
			{"A3", "2021-03-07", "2026-01-15", "75"},
			{"A4", "2021-04-08", "2027-12-01", "25"},
		},
	}

	cleaned, _, err := p.transform(loaded, fixedClock)
	require.NoError(t, err)

	var order []string
	for _, row := range cleaned {
		order = append(order, row[FieldAssetID].(string))
	}
	// Ascending by expiration, the dateless row last.
	assert.Equal(t, []string{"A3", "A4", "A1", "A2"}, order)
}

func TestTransformShortRowsReadAsEmpty(t *testing.T) {
	p := newTestPipeline(t)

	loaded := &loadResult{
		rowBase: 2,
		mapping: ColumnMapping{FieldAssetID: 0, FieldAcquiredDate: 1, FieldValue: 2},
		rows:    [][]string{{"A1"}},
	}

	cleaned, warnings, err := p.transform(loaded, fixedClock)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)
	assert.Nil(t, cleaned[0][FieldAcquiredDate])
	assert.Nil(t, cleaned[0][FieldValue])
	assert.Empty(t, warnings)
}
