package parse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

// classify assigns exactly one kind to a normalized line. Rules are tried in
// priority order; the first that fires wins.
func (e *Engine) classify(line string) (LineKind, string) {
	if line == "" {
		return KindNoise, ReasonEmpty
	}
	if e.isBoilerplate(line) {
		return KindNoise, ReasonBoilerplate
	}
	rec := &e.v.Record
	if loc := rec.PrefixRe().FindStringIndex(line); loc != nil {
		if !rec.DateRe().MatchString(line[loc[1]:]) {
			return KindNoise, ReasonMalformedRecord
		}
		return KindDataRecord, ""
	}
	if adj := e.v.Adjustment; adj != nil && adj.Re().MatchString(line) {
		return KindAdjustment, ""
	}
	if sum := e.v.Summary; sum != nil && sum.MarkerRe().MatchString(line) {
		return KindSummary, ""
	}
	if _, ok := e.matchHeader(line); ok {
		return KindGroupHeader, ""
	}
	return KindNoise, ReasonUnclassified
}

func (e *Engine) isBoilerplate(line string) bool {
	n := &e.v.Noise
	for _, p := range n.Prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	for _, c := range n.Contains {
		if strings.Contains(line, c) {
			return true
		}
	}
	for _, x := range n.Exact {
		if line == x {
			return true
		}
	}
	return false
}

// matchHeader tries every header grammar in declaration order and returns the
// group the first acceptable match describes.
func (e *Engine) matchHeader(line string) (GroupState, bool) {
	for i := range e.v.Headers {
		h := &e.v.Headers[i]
		re := h.Re()
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code := strings.TrimSpace(submatch(re, m, "code"))
		label := strings.TrimSpace(submatch(re, m, "label"))
		aux := CleanMoney(submatch(re, m, "aux"))
		if label == "" || len(code) > h.MaxCodeLen || !isUpperText(label) || excluded(label, h.Exclude) {
			continue
		}
		return GroupState{}.Update(code, label, aux), true
	}
	return GroupState{}, false
}

func submatch(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// isUpperText reports whether s has at least one letter and no lower-case ones.
func isUpperText(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func excluded(label string, words []string) bool {
	for _, w := range words {
		if strings.Contains(label, w) {
			return true
		}
	}
	return false
}

// side builds the side record for a summary or adjustment line, or returns
// the reason it produced none.
func (e *Engine) side(spec *report.SideSpec, line string, state GroupState, requireGroup bool) (*SideRecord, string) {
	if avg := spec.AverageRe(); avg != nil && !avg.MatchString(line) {
		return nil, ReasonNotAverage
	}
	re := spec.Re()
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, ReasonNoValue
	}
	factor := submatch(re, m, "factor")
	if factor == "" {
		return nil, ReasonNoValue
	}
	if requireGroup && !state.IsSet() {
		return nil, ReasonUnattributed
	}
	return &SideRecord{Kind: spec.Kind, Group: state.Snapshot(), Factor: factor}, ""
}
