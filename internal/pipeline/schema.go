package pipeline

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Field is a canonical, schema-defined name for a data column, independent
// of the exact header text used in any particular source file.
type Field string

const (
	FieldAssetID        Field = "asset_id"
	FieldAssetName      Field = "asset_name"
	FieldCategory       Field = "category"
	FieldAcquiredDate   Field = "acquired_date"
	FieldExpiresDate    Field = "expires_date"
	FieldRenewalQuarter Field = "renewal_quarter"
	FieldAgeDays        Field = "age_days"
	FieldValue          Field = "value"
)

// Kind is the normalized value type of a column
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindNumber
)

// Aggregate is the summary-row policy for a column
type Aggregate int

const (
	AggregateNone Aggregate = iota
	AggregateSum
	AggregateCount
)

// Column defines one output column: canonical field, display header,
// number/date format, and summary aggregation policy.
type Column struct {
	Field     Field
	Header    string
	Kind      Kind
	NumFmt    string // Excel number format code; "" means the default format
	Aggregate Aggregate
	Derived   bool // computed by the transformer, never read from the source
}

// OutputSchema is the ordered column list that drives rendering and summary
// computation. Fixed for the lifetime of one run.
type OutputSchema struct {
	Columns []Column
}

// DefaultSchema returns the asset-report output schema.
func DefaultSchema() OutputSchema {
	return OutputSchema{Columns: []Column{
		{Field: FieldAssetID, Header: "Asset ID", Kind: KindText, Aggregate: AggregateCount},
		{Field: FieldAssetName, Header: "Asset Name", Kind: KindText},
		{Field: FieldCategory, Header: "Category", Kind: KindText},
		{Field: FieldAcquiredDate, Header: "Acquired", Kind: KindDate, NumFmt: "m/d/yy"},
		{Field: FieldExpiresDate, Header: "Expires", Kind: KindDate, NumFmt: "m/d/yy"},
		{Field: FieldRenewalQuarter, Header: "Renewal Quarter", Kind: KindText, Derived: true},
		{Field: FieldAgeDays, Header: "Age (Days)", Kind: KindNumber, NumFmt: "0", Derived: true},
		{Field: FieldValue, Header: "Value", Kind: KindNumber, NumFmt: "#,##0.00", Aggregate: AggregateSum},
	}}
}

// ColumnIndex returns the zero-based position of field in the schema, or -1.
func (s OutputSchema) ColumnIndex(field Field) int {
	for i, c := range s.Columns {
		if c.Field == field {
			return i
		}
	}
	return -1
}

// Column returns the column definition for field.
func (s OutputSchema) Column(field Field) (Column, bool) {
	for _, c := range s.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// HasSummary reports whether any column carries an aggregation policy.
func (s OutputSchema) HasSummary() bool {
	for _, c := range s.Columns {
		if c.Aggregate != AggregateNone {
			return true
		}
	}
	return false
}

// ColumnMapping maps a canonical field to the zero-based source column index
// it was found at. Built once during loading by scanning header text.
type ColumnMapping map[Field]int

// CleanedRow holds typed, normalized values keyed by canonical field. A nil
// value is a null cell. Every CleanedRow has an entry for every schema field.
type CleanedRow map[Field]any

// TableRegion is the rectangular sheet range occupied by the rendered table,
// including the header row and any appended summary rows. Rows and columns
// are 1-based and inclusive. All offset math derives from this region.
type TableRegion struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Ref returns the region as an A1-style range reference.
func (r TableRegion) Ref() (string, error) {
	start, err := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	if err != nil {
		return "", fmt.Errorf("region start: %w", err)
	}
	end, err := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	if err != nil {
		return "", fmt.Errorf("region end: %w", err)
	}
	return start + ":" + end, nil
}

// Contains reports whether the given absolute sheet row lies inside the region.
func (r TableRegion) Contains(row int) bool {
	return row >= r.StartRow && row <= r.EndRow
}

// FormatRule is a conditional-formatting specification bound to a schema
// column and a region-relative span of data rows. FirstDataRow 1 is the first
// row below the header; LastDataRow 0 means through the last data row. Rules
// are stored region-relative from creation and resolved to absolute sheet
// coordinates exactly once, at apply time, off the final TableRegion.
type FormatRule struct {
	Field        Field
	FirstDataRow int
	LastDataRow  int
	// Formula builds an expression criteria anchored on the first cell of
	// the resolved range. Empty Formula means a plain cell-value rule using
	// Criteria and Value instead.
	Formula    func(firstCell string) string
	Criteria   string
	Value      string
	Style      excelize.Style
	StopIfTrue bool
}
