package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t  ", ""},
		{"en dash", "AR–4 – ARBOR RIDGE", "AR-4 - ARBOR RIDGE"},
		{"em dash and minus", "L — 12−13", "L - 12-13"},
		{"non-breaking hyphen", "BI‑LEVEL", "BI-LEVEL"},
		{"collapses runs", "  L -12-13-401-021    4936  MATTHEW CT\t10/31/2024 ", "L -12-13-401-021 4936 MATTHEW CT 10/31/2024"},
		{"no-break space", "4936\u00a0MATTHEW", "4936 MATTHEW"},
		{"keeps fractions and ligatures", "LOT 2½ ﬁELD…", "LOT 2½ ﬁELD…"},
		{"keeps full-width text", "ＡＲ-1", "ＡＲ-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Line(tc.in))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"$390,000", "WD", "03-ARM'S", "LENGTH"}, Tokens("$390,000  WD 03-ARM'S\tLENGTH"))
	assert.Empty(t, Tokens("   "))
}

func TestPages(t *testing.T) {
	pages := Pages("a\r\nb\n\fc\nd\n\f")
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, pages)
	assert.Nil(t, Pages(""))
	assert.Equal(t, [][]string{{"only"}}, Pages("only"))
	assert.Equal(t, [][]string{{"x"}, {"y"}}, Pages("x\n\fy\n"))
}
