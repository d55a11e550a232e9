package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		path string
		want string
	}{
		{"reports/2025 ECF Analysis.pdf", "ecf-2025"},
		{"Sales%20Study%202024.pdf", "sales-2024"},
		{"/tmp/Land_Analysis_2025.pdf", "land-2024"},
		{"ECF_2019.pdf", "ecf-2024"},
		{"land.txt", "land-2026"},
		{"2026 ECF and Land.pdf", "ecf-2026"},
		{"e.c.f.-2026.pdf", "ecf-2026"},
		{"sales ratio 2030.pdf", "sales-2026"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			v, err := r.Detect(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.Name)
		})
	}
}

func TestDetectUnknownKind(t *testing.T) {
	_, err := NewRegistry().Detect("assessment_roll_2024.pdf")
	assert.Error(t, err)
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	assert.Equal(t, "ecf-2024", names[0])
	assert.Len(t, r.Variants(), len(names))

	_, ok := r.Lookup(" Sales-2025 ")
	assert.True(t, ok)
	_, ok = r.Lookup("sales-1999")
	assert.False(t, ok)
}
