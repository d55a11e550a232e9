package constants

import (
	"strings"
)

// ReportKind is the conceptual report family a document belongs to.
type ReportKind string

const (
	ReportECF   ReportKind = "ecf"
	ReportSales ReportKind = "sales"
	ReportLand  ReportKind = "land"
)

var allReportKinds = []ReportKind{
	ReportECF,
	ReportSales,
	ReportLand,
}

func ReportKindsAsStrings() []string {
	result := make([]string, len(allReportKinds))
	for i, k := range allReportKinds {
		result[i] = string(k)
	}
	return result
}

// CanonicalizeReportKind maps free-form report names and file name fragments
// ("E.C.F.", "Sales Study", "land analysis") onto a ReportKind.
func CanonicalizeReportKind(input string) (ReportKind, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]ReportKind{
		"e.c.f.":                     ReportECF,
		"economic condition factor":  ReportECF,
		"economic condition factors": ReportECF,
		"sale":                       ReportSales,
		"sales study":                ReportSales,
		"sales ratio":                ReportSales,
		"sale analysis":              ReportSales,
		"land value":                 ReportLand,
		"land analysis":              ReportLand,
	}

	if k, ok := synonyms[normalized]; ok {
		return k, true
	}

	for _, k := range allReportKinds {
		if normalized == string(k) {
			return k, true
		}
	}

	return "", false
}
