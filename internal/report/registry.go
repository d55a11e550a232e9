package report

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
)

// Registry holds the selectable variants by name.
type Registry struct {
	byName map[string]*Variant
}

// NewRegistry returns a registry pre-populated with the built-ins.
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]*Variant{}}
	for _, v := range Builtins() {
		r.byName[v.Name] = v
	}
	return r
}

// Register compiles v and adds it, replacing a variant of the same name.
func (r *Registry) Register(v *Variant) error {
	if err := v.Compile(); err != nil {
		return err
	}
	r.byName[v.Name] = v
	return nil
}

// Lookup returns the named variant.
func (r *Registry) Lookup(name string) (*Variant, bool) {
	v, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		v, ok = r.byName[name]
	}
	return v, ok
}

// Names lists variant names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Variants lists variants sorted by name.
func (r *Registry) Variants() []*Variant {
	out := make([]*Variant, 0, len(r.byName))
	for _, n := range r.Names() {
		out = append(out, r.byName[n])
	}
	return out
}

var reYear = regexp.MustCompile(`(?:^|[^0-9])(20\d{2})(?:[^0-9]|$)`)

// Detect picks a variant from a document file name: the report kind from its
// keywords and the revision from the first four-digit year. The nearest
// variant at or before that year wins; without a usable year the latest one.
func (r *Registry) Detect(path string) (*Variant, error) {
	name := filepath.Base(path)
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))

	kind, ok := detectKind(name)
	if !ok {
		return nil, fmt.Errorf("no report kind keyword (%s) in %q", strings.Join(constants.ReportKindsAsStrings(), ", "), name)
	}
	year := 0
	if m := reYear.FindStringSubmatch(name); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	var candidates []*Variant
	for _, v := range r.byName {
		if v.Kind == kind {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no variant registered for report kind %q", kind)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Year != candidates[j].Year {
			return candidates[i].Year < candidates[j].Year
		}
		return candidates[i].Name < candidates[j].Name
	})
	if year == 0 {
		return candidates[len(candidates)-1], nil
	}
	best := candidates[0]
	for _, v := range candidates {
		if v.Year <= year {
			best = v
		}
	}
	return best, nil
}

// detectKind scans single words and word pairs; ECF wins over land, land over sales.
func detectKind(name string) (constants.ReportKind, bool) {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '+'
	})
	found := map[constants.ReportKind]bool{}
	for i, w := range words {
		if k, ok := constants.CanonicalizeReportKind(w); ok {
			found[k] = true
		}
		if i+1 < len(words) {
			if k, ok := constants.CanonicalizeReportKind(w + " " + words[i+1]); ok {
				found[k] = true
			}
		}
	}
	for _, k := range []constants.ReportKind{constants.ReportECF, constants.ReportLand, constants.ReportSales} {
		if found[k] {
			return k, true
		}
	}
	return "", false
}
