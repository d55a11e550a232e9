// Package export turns parsed records into output tables and writes them as
// CSV, XLSX, SQLite or Postgres.
package export

import (
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/parse"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

// Table is one output dataset. Kind is "" for the primary table and the side
// kind otherwise.
type Table struct {
	Kind    string
	Columns []string
	Rows    [][]string
}

// Sink accumulates one document's records and side records in the order
// they were emitted.
type Sink struct {
	v       *report.Variant
	records []parse.Record
	sides   map[string][]parse.SideRecord
}

var _ parse.Collector = (*Sink)(nil)

func NewSink(v *report.Variant) *Sink {
	return &Sink{v: v, sides: map[string][]parse.SideRecord{}}
}

func (s *Sink) AddRecord(r parse.Record) { s.records = append(s.records, r) }

func (s *Sink) AddSide(r parse.SideRecord) { s.sides[r.Kind] = append(s.sides[r.Kind], r) }

// Tables returns the primary table followed by one table per declared side
// kind. Side tables are present even when empty.
func (s *Sink) Tables() []Table {
	out := []Table{s.primary()}
	for _, spec := range s.v.SideKinds() {
		t := Table{Kind: spec.Kind, Columns: append([]string(nil), spec.Columns...)}
		for _, r := range s.sides[spec.Kind] {
			t.Rows = append(t.Rows, []string{r.Group.Key, r.Group.Label, r.Factor})
		}
		out = append(out, t)
	}
	return out
}

func (s *Sink) primary() Table {
	t := Table{Columns: s.v.Columns(), Rows: make([][]string, 0, len(s.records))}
	for _, r := range s.records {
		row := make([]string, 0, len(t.Columns))
		for _, g := range s.v.GroupColumns {
			row = append(row, r.Group.Field(g.Source))
		}
		row = append(row, r.Identifier, r.Address, r.Date)
		row = append(row, r.Fields...)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Counts returns the number of data records and side records collected.
func Counts(tables []Table) (records, sides int) {
	for _, t := range tables {
		if t.Kind == "" {
			records += len(t.Rows)
		} else {
			sides += len(t.Rows)
		}
	}
	return records, sides
}
