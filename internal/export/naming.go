package export

import (
	"path/filepath"
	"strings"
)

// TableName is the dataset name for a table: the base for the primary table,
// <base>_<Kind> for side tables.
func TableName(base, kind string) string {
	if kind == "" {
		return base
	}
	return base + "_" + kind
}

// FileName appends the format extension to TableName.
func FileName(base, kind, ext string) string {
	return TableName(base, kind) + "." + ext
}

// BaseName derives the default output base from an input path (its stem).
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func fileNames(base string, tables []Table, ext string) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = FileName(base, t.Kind, ext)
	}
	return names
}
