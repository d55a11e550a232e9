// Package parse turns normalized report lines into data records and side
// records for one report variant.
package parse

import (
	"log/slog"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/normalize"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

// Engine runs the classification state machine for one variant. It holds no
// per-document state and is safe for concurrent use.
type Engine struct {
	v      *report.Variant
	logger *slog.Logger
}

// NewEngine compiles v if needed and returns an engine for it.
func NewEngine(v *report.Variant, logger *slog.Logger) (*Engine, error) {
	if err := v.Compile(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{v: v, logger: logger.With("variant", v.Name)}, nil
}

// Variant returns the layout the engine parses.
func (e *Engine) Variant() *report.Variant { return e.v }

// Classify returns the kind a line would be assigned and, for lines that
// produce nothing, the reason.
func (e *Engine) Classify(raw string) (LineKind, string) {
	return e.classify(normalize.Line(raw))
}

// Step classifies one line given the current group and returns the next
// group together with what the line produced. Only a group header changes
// the state.
func (e *Engine) Step(state GroupState, raw string) (GroupState, Outcome) {
	line := normalize.Line(raw)
	kind, reason := e.classify(line)
	out := Outcome{Kind: kind, Reason: reason}

	switch kind {
	case KindGroupHeader:
		next, _ := e.matchHeader(line)
		return next, out
	case KindDataRecord:
		rec, ok := e.Extract(line, state)
		if !ok {
			out.Reason = ReasonExtractionFailed
			return state, out
		}
		out.Record = rec
	case KindAdjustment:
		out.Side, out.Reason = e.side(e.v.Adjustment, line, state, false)
	case KindSummary:
		out.Side, out.Reason = e.side(e.v.Summary, line, state, true)
	}
	return state, out
}

// Run feeds every line of a document through Step, starting from the empty
// group, and hands records and side records to c in document order.
func (e *Engine) Run(pages [][]string, c Collector) Stats {
	stats := newStats()
	var state GroupState
	for p, page := range pages {
		for n, raw := range page {
			line := RawLine{Page: p + 1, Number: n + 1, Text: raw}
			var out Outcome
			state, out = e.Step(state, line.Text)
			stats.observe(out)
			if out.Record != nil {
				c.AddRecord(*out.Record)
			}
			if out.Side != nil {
				c.AddSide(*out.Side)
			}
			switch {
			case out.Kind == KindGroupHeader:
				e.logger.Debug("parse.group", "page", line.Page, "line", line.Number, "key", state.Key, "label", state.Label)
			case out.Reason != "" && out.Reason != ReasonEmpty:
				e.logger.Debug("parse.skip", "page", line.Page, "line", line.Number, "kind", out.Kind.String(), "reason", out.Reason)
			}
		}
	}
	return stats
}
