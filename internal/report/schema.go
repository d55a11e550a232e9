package report

// BuildVariantJSONSchema returns the JSON-Schema (draft 2020-12 subset) that
// variant definition files must satisfy before they are decoded.
func BuildVariantJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	strList := map[string]any{"type": "array", "items": str}
	shapes := map[string]any{
		"type":  "array",
		"items": map[string]any{"enum": []string{ShapeCurrency, ShapeDecimal, ShapeInteger, ShapeQuotedCode, ShapeText}},
	}

	side := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"kind", "pattern", "columns"},
		"properties": map[string]any{
			"kind":    map[string]any{"type": "string", "pattern": `^[A-Za-z][A-Za-z0-9_]*$`},
			"marker":  str,
			"average": str,
			"pattern": nonEmpty,
			"columns": map[string]any{"type": "array", "items": nonEmpty, "minItems": 3, "maxItems": 3},
		},
	}

	field := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name"},
		"properties": map[string]any{
			"name":       nonEmpty,
			"clean":      map[string]any{"enum": []string{CleanNone, CleanMoney, CleanUnquote}},
			"bucket":     map[string]any{"enum": []string{BucketCurrency, BucketNumeric, BucketText}},
			"index":      map[string]any{"type": "integer", "minimum": -1},
			"kind":       map[string]any{"enum": []string{FieldSingle, FieldRun, FieldRest}},
			"accept":     shapes,
			"match":      str,
			"enum":       strList,
			"continue":   str,
			"stop":       shapes,
			"stop_match": str,
		},
	}

	header := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "pattern"},
		"properties": map[string]any{
			"name":         nonEmpty,
			"pattern":      nonEmpty,
			"max_code_len": map[string]any{"type": "integer", "minimum": 1},
			"exclude":      strList,
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "kind", "record", "headers", "mode", "fields"},
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "pattern": `^[a-z0-9][a-z0-9._-]*$`},
			"kind":        map[string]any{"type": "string", "minLength": 1},
			"year":        map[string]any{"type": "integer", "minimum": 1900, "maximum": 2200},
			"description": str,
			"group_columns": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"name", "source"},
					"properties": map[string]any{
						"name":   nonEmpty,
						"source": map[string]any{"enum": []string{GroupKey, GroupLabel, GroupAux}},
					},
				},
			},
			"record": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"prefix", "identifier"},
				"properties": map[string]any{
					"prefix":            nonEmpty,
					"identifier":        nonEmpty,
					"date":              str,
					"identifier_column": str,
					"address_column":    str,
					"date_column":       str,
				},
			},
			"noise": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"prefixes": strList,
					"contains": strList,
					"exact":    strList,
				},
			},
			"headers":    map[string]any{"type": "array", "items": header},
			"summary":    side,
			"adjustment": side,
			"mode":       map[string]any{"enum": []string{ModeBucketed, ModePositional}},
			"fields":     map[string]any{"type": "array", "items": field, "minItems": 1},
		},
	}
}
