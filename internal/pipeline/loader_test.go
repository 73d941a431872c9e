package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Asset ID", "asset id"},
		{"  Unit   Expiration   Date ", "unit expiration date"},
		{"VALUE", "value"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.in))
	}
}

func TestFindHeaderRowSkipsBannerRows(t *testing.T) {
	p := newTestPipeline(t)

	rows := [][]string{
		{"Quarterly Asset Export"},
		{""},
		{"ID", "Name", "Acquired", "Value"},
		{"A1", "Printer", "1/5/21", "100"},
	}

	headerRow, mapping := p.findHeaderRow(rows)
	require.Equal(t, 2, headerRow)
	assert.Equal(t, 0, mapping[FieldAssetID])
	assert.Equal(t, 1, mapping[FieldAssetName])
	assert.Equal(t, 2, mapping[FieldAcquiredDate])
	assert.Equal(t, 3, mapping[FieldValue])
}

func TestFindHeaderRowBelowThreshold(t *testing.T) {
	p := newTestPipeline(t)

	// Only one vocabulary hit; threshold is two.
	headerRow, _ := p.findHeaderRow([][]string{{"ID", "foo", "bar"}})
	assert.Equal(t, -1, headerRow)
}

func TestFindHeaderRowFirstMatchWinsForDuplicates(t *testing.T) {
	p := newTestPipeline(t)

	headerRow, mapping := p.findHeaderRow([][]string{{"ID", "Asset ID", "Value"}})
	require.Equal(t, 0, headerRow)
	assert.Equal(t, 0, mapping[FieldAssetID])
}

func TestLoadStopsAtFirstEmptyRow(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"ID", "Acquired", "Value"},
		{"A1", "1/5/21", 100},
		{nil, nil, nil},
		{"A2", "1/6/21", 200},
	})

	loaded, err := newTestPipeline(t).load(content)
	require.NoError(t, err)
	assert.Len(t, loaded.rows, 1)
	assert.Equal(t, 2, loaded.rowBase)
}

func TestLoadPicksSheetWithHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), "Notes")
	require.NoError(t, f.SetCellValue("Notes", "A1", "nothing tabular here"))

	_, err := f.NewSheet("Export")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Export", "A1", "ID"))
	require.NoError(t, f.SetCellValue("Export", "B1", "Acquired"))
	require.NoError(t, f.SetCellValue("Export", "C1", "Value"))
	require.NoError(t, f.SetCellValue("Export", "A2", "A1"))
	require.NoError(t, f.SetCellValue("Export", "B2", "1/5/21"))
	require.NoError(t, f.SetCellValue("Export", "C2", 100))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	loaded, err := newTestPipeline(t).load(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Export", loaded.sheet)
	assert.Len(t, loaded.rows, 1)
}

func TestLoadHonorsConfiguredSheetName(t *testing.T) {
	p := newTestPipeline(t)
	p.cfg.SheetName = "Missing"

	content := buildWorkbook(t, [][]any{
		{"ID", "Acquired", "Value"},
		{"A1", "1/5/21", 100},
	})

	_, err := p.load(content)
	require.Error(t, err)

	// The configured name is honored rather than falling back to detection.
	_, err = newTestPipeline(t).Process(context.Background(), content, fixedClock)
	require.NoError(t, err)
}

func TestLoadLegacyHeaderVocabulary(t *testing.T) {
	// Headers as emitted by the legacy unit registry export.
	content := buildWorkbook(t, [][]any{
		{"Unit ID", "Unit Name", "Registration Date", "Unit Expiration Date", "Unit Value"},
		{"U-100", "Forklift", "2019-04-01", "2027-04-01", "12,500.00"},
	})

	loaded, err := newTestPipeline(t).load(content)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.mapping[FieldAssetID])
	assert.Equal(t, 1, loaded.mapping[FieldAssetName])
	assert.Equal(t, 2, loaded.mapping[FieldAcquiredDate])
	assert.Equal(t, 3, loaded.mapping[FieldExpiresDate])
	assert.Equal(t, 4, loaded.mapping[FieldValue])
}

func TestRowIsEmpty(t *testing.T) {
	assert.True(t, rowIsEmpty(nil))
	assert.True(t, rowIsEmpty([]string{"", "  ", "\t"}))
	assert.False(t, rowIsEmpty([]string{"", "x"}))
}

func TestLoadRejectsGarbageBytes(t *testing.T) {
	_, err := newTestPipeline(t).load(bytes.Repeat([]byte{0x42}, 64))
	require.Error(t, err)
}
