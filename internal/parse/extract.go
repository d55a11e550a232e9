package parse

import (
	"strings"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

// Extract splits a data line into identifier, address, date and the variant's
// fields, stamping it with the current group. It returns false when the line
// lacks an identifier or a date.
func (e *Engine) Extract(line string, state GroupState) (*Record, bool) {
	rec := &e.v.Record
	idRe := rec.IdentifierRe()
	m := idRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	id := strings.TrimSpace(submatch(idRe, m, "id"))
	rest := strings.TrimSpace(submatch(idRe, m, "rest"))
	if id == "" {
		return nil, false
	}
	loc := rec.DateRe().FindStringIndex(rest)
	if loc == nil {
		return nil, false
	}

	toks := Tokenize(rest[loc[1]:])
	var fields []string
	if e.v.Mode == report.ModeBucketed {
		fields = e.bucketed(toks)
	} else {
		fields = e.positional(toks)
	}
	return &Record{
		Identifier: id,
		Address:    strings.TrimSpace(rest[:loc[0]]),
		Date:       rest[loc[0]:loc[1]],
		Group:      state.Snapshot(),
		Fields:     fields,
	}, true
}

// bucketed sorts tokens into currency, numeric and text buckets and reads
// each field from its bucket by index; a negative index counts from the end.
func (e *Engine) bucketed(toks []Token) []string {
	var currency, numeric []string
	var text []Token
	for _, t := range toks {
		switch t.Shape {
		case ShapeCurrency:
			currency = append(currency, t.Text)
		case ShapeDecimal, ShapeInteger:
			numeric = append(numeric, t.Text)
		default:
			text = append(text, t)
		}
	}

	out := make([]string, len(e.v.Fields))
	for i := range e.v.Fields {
		f := &e.v.Fields[i]
		var val string
		switch f.Bucket {
		case report.BucketCurrency:
			val = pick(currency, f.Index)
		case report.BucketNumeric:
			val = pick(numeric, f.Index)
		case report.BucketText:
			val = joinTokens(text)
		}
		out[i] = cleanValue(f.Clean, val)
	}
	return out
}

func pick(list []string, idx int) string {
	if idx < 0 {
		idx += len(list)
	}
	if idx < 0 || idx >= len(list) {
		return ""
	}
	return list[idx]
}

// positional walks the fields in order with a single cursor over the tokens.
// A field whose constraints reject the token under the cursor stays empty
// and the same token is offered to the next field.
func (e *Engine) positional(toks []Token) []string {
	out := make([]string, len(e.v.Fields))
	i := 0
	for fi := range e.v.Fields {
		f := &e.v.Fields[fi]
		var val string
		switch f.Kind {
		case report.FieldSingle:
			if i < len(toks) && accepts(f, toks[i]) {
				val = toks[i].Text
				i++
				if cont := f.ContinueRe(); cont != nil && i < len(toks) && cont.MatchString(toks[i].Text) {
					val += " " + toks[i].Text
					i++
				}
			}
		case report.FieldRun:
			start := i
			for i < len(toks) && !stops(f, toks[i]) {
				i++
			}
			val = joinTokens(toks[start:i])
		case report.FieldRest:
			val = joinTokens(toks[i:])
			i = len(toks)
		}
		out[fi] = cleanValue(f.Clean, val)
	}
	return out
}

func accepts(f *report.FieldSpec, t Token) bool {
	if !f.Accepts(t.Shape.String()) {
		return false
	}
	if re := f.MatchRe(); re != nil && !re.MatchString(t.Text) {
		return false
	}
	return f.InEnum(t.Text)
}

func stops(f *report.FieldSpec, t Token) bool {
	if f.Stops(t.Shape.String()) {
		return true
	}
	re := f.StopMatchRe()
	return re != nil && re.MatchString(t.Text)
}
