package parse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

type collected struct {
	records []Record
	sides   []SideRecord
}

func (c *collected) AddRecord(r Record)   { c.records = append(c.records, r) }
func (c *collected) AddSide(s SideRecord) { c.sides = append(c.sides, s) }

func newEngine(t *testing.T, name string) *Engine {
	t.Helper()
	v, ok := report.NewRegistry().Lookup(name)
	require.True(t, ok, name)
	e, err := NewEngine(v, nil)
	require.NoError(t, err)
	return e
}

func fieldMap(e *Engine, r Record) map[string]string {
	out := map[string]string{}
	for i, f := range e.Variant().Fields {
		out[f.Name] = r.Fields[i]
	}
	return out
}

func TestECFDocument(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	pages := [][]string{{
		"Parcel Number   Street Address   Sale Date   Sale Price",
		"AR-1 – ARBOR RIDGE",
		"L -12-13-401-021  4936 MATTHEW CT  10/31/2024  $390,000 $390,000 $102,000 $3,400 $291,400 $210,700 1.383 TWO STORY",
		"TWO-STORY",
		"E.C.F. => 1.400",
		"Ave. E.C.F. => 1.383",
		"",
	}}

	var c collected
	stats := e.Run(pages, &c)

	require.Len(t, c.records, 1)
	r := c.records[0]
	assert.Equal(t, "L -12-13-401-021", r.Identifier)
	assert.Equal(t, "4936 MATTHEW CT", r.Address)
	assert.Equal(t, "10/31/2024", r.Date)
	assert.Equal(t, GroupState{Key: "AR-1", Label: "ARBOR RIDGE"}, r.Group)

	f := fieldMap(e, r)
	assert.Equal(t, "390000", f["Sale_Price"])
	assert.Equal(t, "390000", f["Adj_Sale"])
	assert.Equal(t, "102000", f["Land_Value"])
	assert.Equal(t, "3400", f["Land_Yard"])
	assert.Equal(t, "291400", f["Bldg_Residual"])
	assert.Equal(t, "210700", f["Cost_Man"])
	assert.Equal(t, "1.383", f["ECF"])
	assert.Equal(t, "TWO STORY", f["Building_Style"])

	require.Len(t, c.sides, 1)
	assert.Equal(t, SideRecord{
		Kind:   "ECF_Summaries",
		Group:  GroupState{Key: "AR-1", Label: "ARBOR RIDGE"},
		Factor: "1.383",
	}, c.sides[0])

	assert.Equal(t, 7, stats.Lines)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 1, stats.SideRecords["ECF_Summaries"])
	assert.Equal(t, 2, stats.Kinds[KindSummary])
	assert.Equal(t, 1, stats.Skipped[ReasonNotAverage])
	assert.Equal(t, 2, stats.Skipped[ReasonBoilerplate])
	assert.Equal(t, 1, stats.Skipped[ReasonEmpty])
}

func TestGroupPartition(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	headers := []struct{ code, label string }{
		{"AR-1", "ARBOR RIDGE"},
		{"BH-2", "BROOKHAVEN"},
		{"CC-3", "COUNTRY CREEK"},
	}
	var page []string
	for hi, h := range headers {
		page = append(page, h.code+" - "+h.label)
		for i := 0; i < 3; i++ {
			page = append(page, fmt.Sprintf("L -12-13-40%d-00%d 10%d MAIN ST 1/%d/2024 $100,000 $100,000 1.1", hi, i, i, i+1))
		}
	}

	var c collected
	e.Run([][]string{page}, &c)

	require.Len(t, c.records, 9)
	for i, r := range c.records {
		h := headers[i/3]
		assert.Equal(t, h.code, r.Group.Key, r.Identifier)
		assert.Equal(t, h.label, r.Group.Label, r.Identifier)
	}
}

func TestGroupStateCarriesAcrossPages(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	pages := [][]string{
		{"AR-1 - ARBOR RIDGE"},
		{"L -12-13-401-021 4936 MATTHEW CT 10/31/2024 $390,000"},
	}
	var c collected
	e.Run(pages, &c)
	require.Len(t, c.records, 1)
	assert.Equal(t, "AR-1", c.records[0].Group.Key)
}

func TestMissingFieldsAreEmpty(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	rec, ok := e.Extract("L -12-13-401-021 4936 MATTHEW CT 10/31/2024 $390,000 $390,000 $102,000", GroupState{})
	require.True(t, ok)
	f := fieldMap(e, *rec)
	assert.Equal(t, "102000", f["Land_Value"])
	assert.Equal(t, "", f["Land_Yard"])
	assert.Equal(t, "", f["Cost_Man"])
	assert.Equal(t, "", f["ECF"])
	assert.Equal(t, "", f["Building_Style"])
	assert.Len(t, rec.Fields, len(e.Variant().Fields))
}

func TestDataLineWithoutTrailingTokens(t *testing.T) {
	for _, name := range []string{"ecf-2026", "sales-2026", "land-2026"} {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, name)
			var c collected
			stats := e.Run([][]string{{"L -12-13-401-021 4936 MATTHEW CT 10/31/2024"}}, &c)
			require.Len(t, c.records, 1)
			r := c.records[0]
			assert.Equal(t, "L -12-13-401-021", r.Identifier)
			assert.Equal(t, "4936 MATTHEW CT", r.Address)
			assert.Equal(t, "10/31/2024", r.Date)
			require.Len(t, r.Fields, len(e.Variant().Fields))
			for i, v := range r.Fields {
				assert.Equal(t, "", v, e.Variant().Fields[i].Name)
			}
			assert.Empty(t, stats.Skipped)
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	e := newEngine(t, "ecf-2026")
	var c collected
	e.Run([][]string{{
		"AR-1 - ARBOR RIDGE",
		"L -12-13-401-021 4936 MATTHEW CT 10/31/2024 $390,000 $390,000 $81,600 $86,310 $303,690 $219,630 1.383",
	}}, &c)

	require.Len(t, c.records, 1)
	r := c.records[0]
	assert.Equal(t, GroupState{Key: "AR-1", Label: "ARBOR RIDGE"}, r.Group)
	assert.Equal(t, "L -12-13-401-021", r.Identifier)
	assert.Equal(t, "4936 MATTHEW CT", r.Address)
	assert.Equal(t, "10/31/2024", r.Date)
	assert.Equal(t, []string{"390000", "390000", "81600", "86310", "303690", "219630", "1.383", ""}, r.Fields)
	assert.Empty(t, c.sides)
}

func TestNoiseOnlyDocument(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	var c collected
	stats := e.Run([][]string{{"Parcel Number Street Address", "", "Totals: $1,000", "Page 1 of 3", "NO CHANGE"}}, &c)
	assert.Empty(t, c.records)
	assert.Empty(t, c.sides)
	assert.Equal(t, 5, stats.Kinds[KindNoise])
	assert.Equal(t, 1, stats.Skipped[ReasonUnclassified])
}

func TestStepClassification(t *testing.T) {
	e := newEngine(t, "ecf-2026")
	set := GroupState{Key: "AR-1", Label: "ARBOR RIDGE"}

	cases := []struct {
		name   string
		line   string
		kind   LineKind
		reason string
		state  GroupState
	}{
		{"header", "BH-2 - BROOKHAVEN", KindGroupHeader, "", GroupState{Key: "BH-2", Label: "BROOKHAVEN"}},
		{"record without date", "L -12-13-401-021 4936 MATTHEW CT", KindNoise, ReasonMalformedRecord, set},
		{"building style", "TWO-STORY", KindNoise, ReasonBoilerplate, set},
		{"code too long", "ABCDEFGHIJK-1 - FOO", KindNoise, ReasonUnclassified, set},
		{"lower-case label", "AR-1 - Arbor Ridge", KindNoise, ReasonUnclassified, set},
		{"non-average summary", "E.C.F. => 1.2", KindSummary, ReasonNotAverage, set},
		{"summary without value", "Ave. E.C.F. =>", KindSummary, ReasonNoValue, set},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, out := e.Step(set, tc.line)
			assert.Equal(t, tc.kind, out.Kind)
			assert.Equal(t, tc.reason, out.Reason)
			assert.Equal(t, tc.state, next)
			assert.Nil(t, out.Record)
			assert.Nil(t, out.Side)
		})
	}
}

func TestSummaryNeedsGroup(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	_, out := e.Step(GroupState{}, "Ave. E.C.F. => 1.383")
	assert.Equal(t, KindSummary, out.Kind)
	assert.Equal(t, ReasonUnattributed, out.Reason)
	assert.Nil(t, out.Side)
}

func TestRunIsIdempotentAndResetsState(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	first := [][]string{{"AR-1 - ARBOR RIDGE", "L -12-13-401-021 4936 MATTHEW CT 10/31/2024 $390,000"}}
	second := [][]string{{"L -12-13-401-022 4940 MATTHEW CT 11/1/2024 $400,000"}}

	var a, b collected
	e.Run(first, &a)
	e.Run(first, &b)
	assert.Equal(t, a, b)

	var c collected
	e.Run(second, &c)
	require.Len(t, c.records, 1)
	assert.False(t, c.records[0].Group.IsSet())
}

func TestECF2024LabelCodeHeader(t *testing.T) {
	e := newEngine(t, "ecf-2024")
	next, out := e.Step(GroupState{}, "ARBOR RIDGE AR-1")
	assert.Equal(t, KindGroupHeader, out.Kind)
	assert.Equal(t, GroupState{Key: "AR-1", Label: "ARBOR RIDGE"}, next)
}

func TestSalesPositional(t *testing.T) {
	e := newEngine(t, "sales-2026")
	state, out := e.Step(GroupState{}, "ARBOR RIDGE")
	require.Equal(t, KindGroupHeader, out.Kind)
	assert.Equal(t, GroupState{Label: "ARBOR RIDGE"}, state)

	line := "L -12-13-401-009 4562 CHRISTINA DR 8/2/2024 $355,000 WD 03-ARM'S LENGTH $355,000 $161,432 45.47 $389,440 'AR-1 AR1-ARBOR RIDGE"
	_, out = e.Step(state, line)
	require.NotNil(t, out.Record)
	f := fieldMap(e, *out.Record)
	assert.Equal(t, map[string]string{
		"Sale_Price":            "355000",
		"Instr":                 "WD",
		"Terms_of_Sale":         "03-ARM'S LENGTH",
		"Adj_Sale":              "355000",
		"Asd_When_Sold":         "161432",
		"Asd_Adj_Sale":          "45.47",
		"Cur_Appraisal":         "389440",
		"ECF_Area":              "AR-1",
		"Other_Parcels_in_Sale": "",
		"Land_Table":            "AR1-ARBOR RIDGE",
	}, f)
	assert.Equal(t, "ARBOR RIDGE", out.Record.Group.Label)
}

func TestWholeNumberRatios(t *testing.T) {
	sales := newEngine(t, "sales-2026")
	rec, ok := sales.Extract("L -12-13-401-009 4562 CHRISTINA DR 8/2/2024 $355,000 WD 03-ARM'S LENGTH $355,000 $161,432 45 $389,440 'AR-1 AR1-ARBOR RIDGE", GroupState{})
	require.True(t, ok)
	f := fieldMap(sales, *rec)
	assert.Equal(t, "45", f["Asd_Adj_Sale"])
	assert.Equal(t, "389440", f["Cur_Appraisal"])
	assert.Equal(t, "AR-1", f["ECF_Area"])
	assert.Equal(t, "AR1-ARBOR RIDGE", f["Land_Table"])

	land := newEngine(t, "land-2026")
	rec, ok = land.Extract("L -12-13-401-009 4562 CHRISTINA DR 8/2/2024 $355,000 03-ARM'S LENGTH $355,000 $105,500 $98,000 0.297 81,600 81,600 0.230 1 'AR-1 AR1 ARBOR RIDGE 401 RES", GroupState{})
	require.True(t, ok)
	f = fieldMap(land, *rec)
	assert.Equal(t, "0.230", f["Adj_Alloc_Ratio_LV_SP"])
	assert.Equal(t, "1", f["Total_Acres"])
	assert.Equal(t, "AR-1", f["ECF_Area"])
	assert.Equal(t, "AR1 ARBOR RIDGE", f["Land_Table"])
	assert.Equal(t, "401", f["Class"])
	assert.Equal(t, "RES", f["Rate_Group"])

	rec, ok = land.Extract("L -12-13-401-010 4570 CHRISTINA DR 9/1/2024 $300,000 03-ARM'S LENGTH $300,000 $90,000 $88,000 1 81,600 81,600 1 0.25 'AR-1 AR1 401 RES", GroupState{})
	require.True(t, ok)
	f = fieldMap(land, *rec)
	assert.Equal(t, "1", f["Ratio_LV_SP"])
	assert.Equal(t, "81600", f["Adj_Land_Value"])
	assert.Equal(t, "1", f["Adj_Alloc_Ratio_LV_SP"])
	assert.Equal(t, "0.25", f["Total_Acres"])
}

func TestSalesMismatchShiftsToNextField(t *testing.T) {
	e := newEngine(t, "sales-2025")
	rec, ok := e.Extract("L -12-13-401-009 4562 CHRISTINA DR 8/2/2024 $355,000 03-ARM'S LENGTH $350,000 'AR-1 L -12-13-401-010 AR1", GroupState{})
	require.True(t, ok)
	f := fieldMap(e, *rec)
	assert.Equal(t, "355000", f["Sale_Price"])
	assert.Equal(t, "", f["Instr"])
	assert.Equal(t, "03-ARM'S LENGTH", f["Terms_of_Sale"])
	assert.Equal(t, "350000", f["Adj_Sale"])
	assert.Equal(t, "AR-1", f["ECF_Area"])
	assert.Equal(t, "L -12-13-401-010", f["Other_Parcels_in_Sale"])
	assert.Equal(t, "AR1", f["Land_Table"])
}

func TestSalesCodeCaptionAndRatio(t *testing.T) {
	e := newEngine(t, "sales-2025")
	var c collected
	e.Run([][]string{{
		"AR-1 ARBOR RIDGE",
		"L -12-13-401-009 4562 CHRISTINA DR 8/2/2024 $355,000 WD 03-ARM'S LENGTH $355,000 'AR-1",
		"Std. Dev. => 5.20",
		"Sale. Ratio => 45.47",
	}}, &c)
	require.Len(t, c.records, 1)
	assert.Equal(t, GroupState{Key: "AR-1", Label: "ARBOR RIDGE"}, c.records[0].Group)
	require.Len(t, c.sides, 1)
	assert.Equal(t, "Sale_Ratios", c.sides[0].Kind)
	assert.Equal(t, "45.47", c.sides[0].Factor)
}

func TestLandDocument(t *testing.T) {
	e := newEngine(t, "land-2026")
	var c collected
	stats := e.Run([][]string{{
		"ARBOR RIDGE AR-1 AVERAGE $81,600",
		"L -12-13-401-009 4562 CHRISTINA DR 8/2/2024 $355,000 03-ARM'S LENGTH $355,000 $105,500 $98,000 0.297 81,600 81,600 0.230 0.25 'AR-1 AR1 ARBOR RIDGE 401 RES",
		"1.050 ADJUST 2026 LAND VALUE BY 5%",
		"COUNTRY CREEK CC-3 NO CHANGE",
	}}, &c)

	require.Len(t, c.records, 1)
	r := c.records[0]
	assert.Equal(t, GroupState{Key: "AR-1", Label: "ARBOR RIDGE", Aux: "81600"}, r.Group)
	assert.Equal(t, map[string]string{
		"Sale_Price":            "355000",
		"Terms_of_Sale":         "03-ARM'S LENGTH",
		"Adj_Sale":              "355000",
		"Land_Residual":         "105500",
		"Land_Value_2025":       "98000",
		"Ratio_LV_SP":           "0.297",
		"Adj_Land_Value":        "81600",
		"Land_Value_2026":       "81600",
		"Adj_Alloc_Ratio_LV_SP": "0.230",
		"Total_Acres":           "0.25",
		"ECF_Area":              "AR-1",
		"Land_Table":            "AR1 ARBOR RIDGE",
		"Class":                 "401",
		"Rate_Group":            "RES",
	}, fieldMap(e, r))

	require.Len(t, c.sides, 1)
	assert.Equal(t, SideRecord{Kind: "Adjustments", Group: r.Group, Factor: "1.050"}, c.sides[0])
	assert.Equal(t, 2, stats.Kinds[KindGroupHeader])
	assert.Equal(t, 1, stats.Kinds[KindAdjustment])
}

func TestStatsMerge(t *testing.T) {
	var total Stats
	a := newStats()
	a.observe(Outcome{Kind: KindNoise, Reason: ReasonEmpty})
	a.observe(Outcome{Kind: KindDataRecord, Record: &Record{}})
	b := newStats()
	b.observe(Outcome{Kind: KindSummary, Side: &SideRecord{Kind: "ECF_Summaries"}})

	total.Merge(a)
	total.Merge(b)
	assert.Equal(t, 3, total.Lines)
	assert.Equal(t, 1, total.Records)
	assert.Equal(t, 1, total.TotalSide())
	assert.Equal(t, []string{ReasonEmpty}, total.SkippedReasons())
}

func TestClassifyNormalizes(t *testing.T) {
	e := newEngine(t, "ecf-2025")
	kind, reason := e.Classify("  AR-1 —  ARBOR RIDGE ")
	assert.Equal(t, KindGroupHeader, kind)
	assert.Equal(t, "", reason)
	kind, reason = e.Classify("\t ")
	assert.Equal(t, KindNoise, kind)
	assert.Equal(t, ReasonEmpty, reason)
}
