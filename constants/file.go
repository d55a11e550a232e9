package constants

import "strings"

// Source formats understood by the text source.
const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// AllowedExtensions holds the input extensions picked up when scanning a directory.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF, TEXT or "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TEXT
	default:
		return ""
	}
}

// OutputFormat selects the tabular writer.
type OutputFormat string

const (
	OutputCSV      OutputFormat = "csv"
	OutputXLSX     OutputFormat = "xlsx"
	OutputSQLite   OutputFormat = "sqlite"
	OutputPostgres OutputFormat = "postgres"
)

// ParseOutputFormat accepts the format names case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputCSV, OutputXLSX, OutputSQLite, OutputPostgres:
		return f, true
	case "excel":
		return OutputXLSX, true
	case "pg", "postgresql":
		return OutputPostgres, true
	default:
		return "", false
	}
}
