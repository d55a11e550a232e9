package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/normalize"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

// Shape is the coarse lexical category of a token.
type Shape int

const (
	ShapeText Shape = iota
	ShapeCurrency
	ShapeDecimal
	ShapeInteger
	ShapeQuotedCode
)

func (s Shape) String() string {
	switch s {
	case ShapeCurrency:
		return report.ShapeCurrency
	case ShapeDecimal:
		return report.ShapeDecimal
	case ShapeInteger:
		return report.ShapeInteger
	case ShapeQuotedCode:
		return report.ShapeQuotedCode
	default:
		return report.ShapeText
	}
}

// Token is one whitespace-delimited piece of a line with its shape.
type Token struct {
	Text  string
	Shape Shape
}

var (
	reDecimal = regexp.MustCompile(`^(?:\d+\.\d*|\.\d+)$`)
	reInteger = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+|\d+)$`)
)

// quoteMarkers flag a following short code ('AR-1).
const quoteMarkers = "'‘’`"

// ShapeOf classifies a single token.
func ShapeOf(tok string) Shape {
	switch {
	case tok == "":
		return ShapeText
	case strings.HasPrefix(tok, "$"):
		return ShapeCurrency
	case reDecimal.MatchString(tok):
		return ShapeDecimal
	case reInteger.MatchString(tok):
		return ShapeInteger
	}
	r, size := utf8.DecodeRuneInString(tok)
	if strings.ContainsRune(quoteMarkers, r) && len(tok) > size {
		return ShapeQuotedCode
	}
	return ShapeText
}

// Tokenize splits s on whitespace and shapes every token once.
func Tokenize(s string) []Token {
	parts := normalize.Tokens(s)
	out := make([]Token, len(parts))
	for i, p := range parts {
		out[i] = Token{Text: p, Shape: ShapeOf(p)}
	}
	return out
}

func joinTokens(toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

var moneyReplacer = strings.NewReplacer("$", "", ",", "")

// CleanMoney strips currency markers and group separators: "$390,000" -> "390000".
func CleanMoney(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(moneyReplacer.Replace(s))
}

// Unquote drops the leading quote marker of a coded token.
func Unquote(s string) string {
	return strings.TrimLeft(s, quoteMarkers)
}

func cleanValue(mode, s string) string {
	switch mode {
	case report.CleanMoney:
		return CleanMoney(s)
	case report.CleanUnquote:
		return Unquote(s)
	default:
		return s
	}
}
