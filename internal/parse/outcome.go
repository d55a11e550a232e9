package parse

import (
	"maps"
	"slices"
)

// LineKind is the single category assigned to a line.
type LineKind int

const (
	KindNoise LineKind = iota
	KindGroupHeader
	KindDataRecord
	KindSummary
	KindAdjustment
)

func (k LineKind) String() string {
	switch k {
	case KindGroupHeader:
		return "group_header"
	case KindDataRecord:
		return "data_record"
	case KindSummary:
		return "summary"
	case KindAdjustment:
		return "adjustment"
	default:
		return "noise"
	}
}

// Reasons attached to lines that produce nothing.
const (
	ReasonEmpty            = "empty"
	ReasonBoilerplate      = "boilerplate"
	ReasonMalformedRecord  = "malformed_record"
	ReasonUnclassified     = "unclassified"
	ReasonExtractionFailed = "extraction_failed"
	ReasonNotAverage       = "summary_not_average"
	ReasonNoValue          = "summary_no_value"
	ReasonUnattributed     = "summary_unattributed"
)

// RawLine is one line of extracted text. Page and Number are 1-based and
// only used for diagnostics.
type RawLine struct {
	Page   int
	Number int
	Text   string
}

// Record is one extracted data line. Fields has one entry per variant field,
// "" when absent.
type Record struct {
	Identifier string
	Address    string
	Date       string
	Group      GroupState
	Fields     []string
}

// SideRecord is a summary or adjustment factor keyed to a group.
type SideRecord struct {
	Kind   string
	Group  GroupState
	Factor string
}

// Outcome is the result of one Step: exactly one kind, at most one of
// Record or Side.
type Outcome struct {
	Kind   LineKind
	Reason string
	Record *Record
	Side   *SideRecord
}

// Collector receives what a document run emits, in document order.
type Collector interface {
	AddRecord(Record)
	AddSide(SideRecord)
}

// Stats counts lines per kind and skipped lines per reason.
type Stats struct {
	Lines       int
	Kinds       map[LineKind]int
	Skipped     map[string]int
	Records     int
	SideRecords map[string]int
}

func newStats() Stats {
	return Stats{
		Kinds:       map[LineKind]int{},
		Skipped:     map[string]int{},
		SideRecords: map[string]int{},
	}
}

func (s *Stats) observe(o Outcome) {
	s.Lines++
	s.Kinds[o.Kind]++
	if o.Reason != "" {
		s.Skipped[o.Reason]++
	}
	if o.Record != nil {
		s.Records++
	}
	if o.Side != nil {
		s.SideRecords[o.Side.Kind]++
	}
}

// Merge adds o's counts into s.
func (s *Stats) Merge(o Stats) {
	if s.Kinds == nil {
		*s = newStats()
	}
	s.Lines += o.Lines
	s.Records += o.Records
	for k, n := range o.Kinds {
		s.Kinds[k] += n
	}
	for r, n := range o.Skipped {
		s.Skipped[r] += n
	}
	for k, n := range o.SideRecords {
		s.SideRecords[k] += n
	}
}

// TotalSide sums side records over all kinds.
func (s Stats) TotalSide() int {
	n := 0
	for _, c := range s.SideRecords {
		n += c
	}
	return n
}

// SkippedTotal counts lines that produced nothing, empty lines included.
func (s Stats) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// SkippedReasons lists skip reasons in stable order.
func (s Stats) SkippedReasons() []string {
	return slices.Sorted(maps.Keys(s.Skipped))
}
