package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsCompile(t *testing.T) {
	list := Builtins()
	names := make([]string, 0, len(list))
	for _, v := range list {
		names = append(names, v.Name)
		assert.NoError(t, v.Compile(), v.Name)
		assert.NotEmpty(t, v.Headers, v.Name)
		assert.NotEmpty(t, v.SideKinds(), v.Name)
	}
	assert.ElementsMatch(t, []string{
		"ecf-2024", "ecf-2025", "ecf-2026",
		"sales-2024", "sales-2025", "sales-2026",
		"land-2024", "land-2026",
	}, names)
}

func TestBuiltinsAreFreshCopies(t *testing.T) {
	a := Builtins()[0]
	a.Fields[0].Name = "mutated"
	b := Builtins()[0]
	assert.Equal(t, "Sale_Price", b.Fields[0].Name)
}

func TestColumns(t *testing.T) {
	v, ok := NewRegistry().Lookup("ecf-2025")
	require.True(t, ok)
	assert.Equal(t, []string{
		"Subdivision", "ECF_Area_Code",
		"Parcel_Number", "Street_Address", "Sale_Date",
		"Sale_Price", "Adj_Sale", "Land_Value", "Land_Yard", "Bldg_Residual", "Cost_Man", "ECF", "Building_Style",
	}, v.Columns())

	land, ok := NewRegistry().Lookup("LAND-2026")
	require.True(t, ok)
	assert.Contains(t, land.Columns(), "Land_Value_2025")
	assert.Contains(t, land.Columns(), "Land_Value_2026")
	assert.Equal(t, "Adjustments", land.SideKinds()[0].Kind)
}

func TestCompileRejects(t *testing.T) {
	base := func() *Variant {
		return &Variant{
			Name:    "custom",
			Record:  RecordSpec{Prefix: `^L`, Identifier: `^(?P<id>L\S*)\s+(?P<rest>.+)$`},
			Headers: []HeaderSpec{{Name: "h", Pattern: `^(?P<label>[A-Z ]+)$`}},
			Mode:    ModeBucketed,
			Fields:  []FieldSpec{{Name: "Price", Bucket: BucketCurrency}},
		}
	}
	require.NoError(t, base().Compile())

	cases := map[string]func(v *Variant){
		"no name":            func(v *Variant) { v.Name = "" },
		"identifier groups":  func(v *Variant) { v.Record.Identifier = `^(L\S*)` },
		"bad regex":          func(v *Variant) { v.Record.Prefix = `(` },
		"header label":       func(v *Variant) { v.Headers[0].Pattern = `^(?P<code>X)$` },
		"unknown mode":       func(v *Variant) { v.Mode = "columnar" },
		"unknown bucket":     func(v *Variant) { v.Fields[0].Bucket = "misc" },
		"duplicate field":    func(v *Variant) { v.Fields = append(v.Fields, v.Fields[0]) },
		"unknown clean":      func(v *Variant) { v.Fields[0].Clean = "trim" },
		"summary no marker":  func(v *Variant) { v.Summary = &SideSpec{Kind: "S", Pattern: `(?P<factor>\d+)`, Columns: []string{"a", "b", "c"}} },
		"side two columns":   func(v *Variant) { v.Adjustment = &SideSpec{Kind: "A", Pattern: `(?P<factor>\d+)`, Columns: []string{"a", "b"}} },
		"side kind clash": func(v *Variant) {
			v.Summary = &SideSpec{Kind: "S", Marker: `^S`, Pattern: `(?P<factor>\d+)`, Columns: []string{"a", "b", "c"}}
			v.Adjustment = &SideSpec{Kind: "S", Pattern: `(?P<factor>\d+)`, Columns: []string{"a", "b", "c"}}
		},
		"column clash":       func(v *Variant) { v.GroupColumns = []GroupColumn{{Name: "Price", Source: GroupLabel}} },
		"group source":       func(v *Variant) { v.GroupColumns = []GroupColumn{{Name: "X", Source: "code"}} },
		"single needs shape": func(v *Variant) { v.Mode = ModePositional; v.Fields[0].Kind = FieldSingle },
		"unknown shape": func(v *Variant) {
			v.Mode = ModePositional
			v.Fields[0] = FieldSpec{Name: "P", Kind: FieldSingle, Accept: []string{"money"}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := base()
			mutate(v)
			assert.Error(t, v.Compile())
		})
	}
}

func TestFieldPredicates(t *testing.T) {
	v, ok := NewRegistry().Lookup("sales-2026")
	require.True(t, ok)
	var instr, terms *FieldSpec
	for i := range v.Fields {
		switch v.Fields[i].Name {
		case "Instr":
			instr = &v.Fields[i]
		case "Terms_of_Sale":
			terms = &v.Fields[i]
		}
	}
	require.NotNil(t, instr)
	require.NotNil(t, terms)

	assert.True(t, instr.InEnum("WD"))
	assert.False(t, instr.InEnum("QC"))
	assert.True(t, instr.Accepts(ShapeText))
	assert.False(t, instr.Accepts(ShapeCurrency))
	assert.True(t, terms.Stops(ShapeQuotedCode))
	assert.False(t, terms.Stops(ShapeText))
}
