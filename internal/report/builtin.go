package report

import (
	"strconv"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
)

const (
	parcelPrefix     = `^L\s*-\d{2}-\d{2}`
	parcelIdentifier = `^(?P<id>L\s*-[\d-]+)\s+(?P<rest>.+)$`
	arrowFactor      = `=>\s*(?P<factor>\d*\.?\d+)`
)

var buildingStyles = []string{
	"TWO STORY", "TWO-STORY", "ONE STORY", "ONE-STORY",
	"BI-LEVEL", "SPLIT LEVEL", "RANCH", "COLONIAL",
}

var salesCaptionExclude = []string{
	"PARCEL", "TOTALS", "$", "SALE.", "STD.", "ADJ.", "CUR.",
	"STREET", "TERMS", "INSTR", "ASD", "ECF", "LAND", "ANALYSIS", "STUDY", "=>",
}

func ecfVariant(year int, codeClass string, extraHeaders ...HeaderSpec) *Variant {
	headers := []HeaderSpec{{
		Name:    "code-label",
		Pattern: `^(?P<code>` + codeClass + `-?\d*\.?\d*)\s*-\s*(?P<label>.+)$`,
	}}
	headers = append(headers, extraHeaders...)
	return &Variant{
		Kind:        constants.ReportECF,
		Year:        year,
		Description: "Residential ECF analysis: six currency columns and a trailing E.C.F. ratio",
		GroupColumns: []GroupColumn{
			{Name: "Subdivision", Source: GroupLabel},
			{Name: "ECF_Area_Code", Source: GroupKey},
		},
		Record: RecordSpec{Prefix: parcelPrefix, Identifier: parcelIdentifier},
		Noise: NoiseSpec{
			Prefixes: []string{"Parcel Number", "Totals:"},
			Contains: []string{"NO CHANGE"},
			Exact:    buildingStyles,
		},
		Headers: headers,
		Summary: &SideSpec{
			Kind:    "ECF_Summaries",
			Marker:  `^(?:Ave\.\s*)?E\.C\.F\.`,
			Average: `^Ave\.`,
			Pattern: arrowFactor,
			Columns: []string{"ECF_Area", "Subdivision", "Ave_ECF"},
		},
		Mode: ModeBucketed,
		Fields: []FieldSpec{
			{Name: "Sale_Price", Bucket: BucketCurrency, Index: 0, Clean: CleanMoney},
			{Name: "Adj_Sale", Bucket: BucketCurrency, Index: 1, Clean: CleanMoney},
			{Name: "Land_Value", Bucket: BucketCurrency, Index: 2, Clean: CleanMoney},
			{Name: "Land_Yard", Bucket: BucketCurrency, Index: 3, Clean: CleanMoney},
			{Name: "Bldg_Residual", Bucket: BucketCurrency, Index: 4, Clean: CleanMoney},
			{Name: "Cost_Man", Bucket: BucketCurrency, Index: 5, Clean: CleanMoney},
			{Name: "ECF", Bucket: BucketNumeric, Index: -1},
			{Name: "Building_Style", Bucket: BucketText},
		},
	}
}

func salesVariant(year int, instruments []string, withAssessment bool) *Variant {
	fields := []FieldSpec{
		{Name: "Sale_Price", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
		{Name: "Instr", Kind: FieldSingle, Accept: []string{ShapeText}, Enum: instruments},
		{Name: "Terms_of_Sale", Kind: FieldRun, Stop: []string{ShapeCurrency, ShapeQuotedCode}},
		{Name: "Adj_Sale", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
	}
	if withAssessment {
		fields = append(fields,
			FieldSpec{Name: "Asd_When_Sold", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
			FieldSpec{Name: "Asd_Adj_Sale", Kind: FieldSingle, Accept: []string{ShapeDecimal, ShapeInteger}},
			FieldSpec{Name: "Cur_Appraisal", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
		)
	}
	fields = append(fields,
		FieldSpec{Name: "ECF_Area", Kind: FieldSingle, Accept: []string{ShapeQuotedCode}, Clean: CleanUnquote},
		FieldSpec{Name: "Other_Parcels_in_Sale", Kind: FieldSingle, Accept: []string{ShapeText},
			Match: `^L(?:-[\d-]+)?$`, Continue: `^-[\d-]+$`},
		FieldSpec{Name: "Land_Table", Kind: FieldRest},
	)
	v := &Variant{
		Kind:         constants.ReportSales,
		Year:         year,
		Description:  "Residential sales ratio study: price, instrument, terms, adjusted sale",
		GroupColumns: []GroupColumn{{Name: "Subdivision", Source: GroupLabel}},
		Record:       RecordSpec{Prefix: parcelPrefix, Identifier: parcelIdentifier},
		Noise: NoiseSpec{
			Prefixes: []string{"Parcel Number", "Totals:", "Std. Dev."},
			Contains: []string{"NO SALES", "NO CHANGE"},
		},
		Headers: []HeaderSpec{{
			Name:    "caption",
			Pattern: `^(?P<label>.{4,})$`,
			Exclude: salesCaptionExclude,
		}},
		// Sale. Ratio is printed once per area, after its parcels, so every
		// occurrence is the area aggregate.
		Summary: &SideSpec{
			Kind:    "Sale_Ratios",
			Marker:  `^Sale\.\s*Ratio`,
			Pattern: arrowFactor,
			Columns: []string{"Area_Code", "Subdivision", "Sale_Ratio"},
		},
		Mode:   ModePositional,
		Fields: fields,
	}
	if year == 2025 {
		v.Description = "Residential sales study: code-first subdivision captions, no assessment columns"
		v.GroupColumns = append(v.GroupColumns, GroupColumn{Name: "Area_Code", Source: GroupKey})
		v.Headers = []HeaderSpec{{
			Name:    "code-caption",
			Pattern: `^(?P<code>[A-Z]{2,5}-?\d*\.?\d*)\s+(?P<label>.+)$`,
			Exclude: []string{"PARCEL", "TOTALS", "$", "SALE.", "STD.", "STREET", "TERMS", "INSTR"},
		}}
	}
	return v
}

func landVariant(year int) *Variant {
	prev := strconv.Itoa(year - 1)
	cur := strconv.Itoa(year)
	// 2024 printed both land values either with or without a currency marker.
	curAccept := []string{ShapeInteger}
	if year <= 2024 {
		curAccept = []string{ShapeCurrency, ShapeInteger}
	}
	return &Variant{
		Kind:        constants.ReportLand,
		Year:        year,
		Description: "Residential land analysis: land residuals, allocation ratios, land table and class",
		GroupColumns: []GroupColumn{
			{Name: "Subdivision", Source: GroupLabel},
			{Name: "Area_Code", Source: GroupKey},
			{Name: "Avg_Land_Value", Source: GroupAux},
		},
		Record: RecordSpec{Prefix: parcelPrefix, Identifier: parcelIdentifier},
		Noise: NoiseSpec{
			Prefixes: []string{"Parcel Number", "Totals:"},
		},
		Headers: []HeaderSpec{{
			Name:    "label-code-average",
			Pattern: `^(?P<label>.+?)\s+(?P<code>[A-Z]{2,5}-?\d*\.?\d*)\s+(?:AVERAGE\s+\$?(?P<aux>[\d,]+)|NO\s+CHANGE)`,
			Exclude: []string{"PARCEL", "TOTALS", "$", "SALE", "STD"},
		}},
		Adjustment: &SideSpec{
			Kind:    "Adjustments",
			Pattern: `^(?P<factor>\d*\.?\d+)\s*ADJUST\s+\d{4}\s+LAND\s+VALUE\s+BY`,
			Columns: []string{"Area_Code", "Subdivision", "Adjust_Factor"},
		},
		Mode: ModePositional,
		Fields: []FieldSpec{
			{Name: "Sale_Price", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
			{Name: "Terms_of_Sale", Kind: FieldRun, Stop: []string{ShapeCurrency, ShapeQuotedCode}},
			{Name: "Adj_Sale", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
			{Name: "Land_Residual", Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
			{Name: "Land_Value_" + prev, Kind: FieldSingle, Accept: []string{ShapeCurrency}, Clean: CleanMoney},
			{Name: "Ratio_LV_SP", Kind: FieldSingle, Accept: []string{ShapeDecimal, ShapeInteger}},
			{Name: "Adj_Land_Value", Kind: FieldSingle, Accept: []string{ShapeCurrency, ShapeInteger}, Clean: CleanMoney},
			{Name: "Land_Value_" + cur, Kind: FieldSingle, Accept: curAccept, Clean: CleanMoney},
			{Name: "Adj_Alloc_Ratio_LV_SP", Kind: FieldSingle, Accept: []string{ShapeDecimal, ShapeInteger}},
			{Name: "Total_Acres", Kind: FieldSingle, Accept: []string{ShapeDecimal, ShapeInteger}},
			{Name: "ECF_Area", Kind: FieldSingle, Accept: []string{ShapeQuotedCode, ShapeText},
				Match: `^(?:['‘’]\S+|[A-Z]{2,}-?\d\S*)$`, Clean: CleanUnquote},
			{Name: "Land_Table", Kind: FieldRun, StopMatch: `^\d{3}$`},
			{Name: "Class", Kind: FieldSingle, Accept: []string{ShapeInteger}, Match: `^\d{3}$`},
			{Name: "Rate_Group", Kind: FieldRest},
		},
	}
}

// Builtins returns fresh, compiled copies of the built-in variants.
func Builtins() []*Variant {
	instr := []string{"WD", "CD", "SD", "PTA", "OTH", "LC"}
	instrQC := append(append([]string(nil), instr...), "QC")

	list := []*Variant{
		ecfVariant(2024, `[A-Z]{2,5}`, HeaderSpec{
			Name:    "label-code",
			Pattern: `^(?P<label>.+?)\s+(?P<code>[A-Z]{2,5}-?\d+)$`,
		}),
		ecfVariant(2025, `[A-Z]{2,5}`),
		ecfVariant(2026, `[A-Z]{2,}`),
		salesVariant(2024, instrQC, true),
		salesVariant(2025, instrQC, false),
		salesVariant(2026, instr, true),
		landVariant(2024),
		landVariant(2026),
	}
	for _, v := range list {
		v.Name = string(v.Kind) + "-" + strconv.Itoa(v.Year)
		if err := v.Compile(); err != nil {
			panic(err)
		}
	}
	return list
}
