package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestQuarterCounts(t *testing.T) {
	rows := []CleanedRow{
		{FieldRenewalQuarter: "2026 Q4"},
		{FieldRenewalQuarter: "2026 Q1"},
		{FieldRenewalQuarter: "2026 Q1"},
		{FieldRenewalQuarter: nil},
	}

	quarters, counts := quarterCounts(rows)

	assert.Equal(t, []string{"2026 Q1", "2026 Q4"}, quarters)
	assert.Equal(t, 2, counts["2026 Q1"])
	assert.Equal(t, 1, counts["2026 Q4"])
}

func TestProcessWritesRenewalSchedule(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"Asset ID", "Acquired", "Expires", "Value"},
		{"A-001", "01/05/2021", "12/31/2026", 100},
		{"A-002", "02/06/2022", "02/15/2026", 50},
		{"A-003", "03/07/2023", "02/20/2026", 75},
	})

	result, err := newTestPipeline(t).Process(context.Background(), content, fixedClock)
	require.NoError(t, err)

	out, err := excelize.OpenReader(bytes.NewReader(result.Output))
	require.NoError(t, err)
	defer out.Close()

	rows, err := out.GetRows(ScheduleSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Quarter", "Assets"}, rows[0])
	assert.Equal(t, []string{"2026 Q1", "2"}, rows[1])
	assert.Equal(t, []string{"2026 Q4", "1"}, rows[2])

	tables, err := out.GetTables(ScheduleSheet)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, ScheduleTableName, tables[0].Name)
	assert.Equal(t, "A1:B3", tables[0].Range)
}

func TestProcessSkipsScheduleWithoutExpirations(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"ID", "Acquired", "Value"},
		{"A1", "2021-01-05", 100},
	})

	result, err := newTestPipeline(t).Process(context.Background(), content, fixedClock)
	require.NoError(t, err)

	out, err := excelize.OpenReader(bytes.NewReader(result.Output))
	require.NoError(t, err)
	defer out.Close()

	assert.NotContains(t, out.GetSheetList(), ScheduleSheet)
}
