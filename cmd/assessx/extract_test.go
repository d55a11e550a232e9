package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/ingest"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/parse"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/pipeline"
)

func TestPrintSummarySplitsStreams(t *testing.T) {
	inputs := []ingest.Input{
		{Path: "/reports/ecf 2025.pdf", Size: 2048},
		{Path: "/reports/roll.pdf", Size: 10},
	}
	results := []pipeline.Result{
		{
			Path:    "/reports/ecf 2025.pdf",
			Variant: "ecf-2025",
			Method:  "pdftotext",
			Pages:   3,
			Status:  constants.RunStatusOK,
			Stats: parse.Stats{
				Records:     1234,
				SideRecords: map[string]int{"ECF_Summaries": 2},
				Skipped:     map[string]int{parse.ReasonBoilerplate: 7},
			},
			Outputs: []string{"/out/ecf 2025.csv", "/out/ecf 2025_ECF_Summaries.csv"},
		},
		{
			Path:   "/reports/roll.pdf",
			Status: constants.RunStatusFailed,
			Err:    errors.New("unknown report variant"),
		},
	}

	var out, errOut bytes.Buffer
	printSummary(&out, &errOut, inputs, results)

	stdout := out.String()
	assert.Contains(t, stdout, "ecf 2025.pdf")
	assert.Contains(t, stdout, "1,234")
	assert.Contains(t, stdout, "2.0 kB")
	assert.Contains(t, stdout, "boilerplate")
	assert.Contains(t, stdout, "wrote /out/ecf 2025_ECF_Summaries.csv")
	assert.NotContains(t, stdout, "unknown report variant")

	assert.Equal(t, "/reports/roll.pdf: unknown report variant\n", errOut.String())
	assert.Equal(t, 1, failed(results))
}
