package place_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/placemap/pkg/place"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and collapses whitespace",
			input: "  West   Park  PADEL ",
			want:  "west park padel",
		},
		{
			name:  "folds diacritics",
			input: "Café Müller",
			want:  "cafe muller",
		},
		{
			name:  "punctuation becomes separators",
			input: "O'Neill's Sports-Centre & Gym",
			want:  "o neill s sports centre gym",
		},
		{
			name:  "digits survive",
			input: "Court 3, Hall B",
			want:  "court 3 hall b",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "symbols only",
			input: "—&–",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, place.NormalizeName(tt.input))
		})
	}
}

func TestNameTokens(t *testing.T) {
	assert.Equal(t,
		[]string{"west", "park", "padel"},
		place.NameTokens("West Park Padel"))

	assert.Equal(t,
		[]string{"padel", "club"},
		place.NameTokens("Padel Padel Club"),
		"duplicate tokens collapse, first occurrence order kept")

	assert.Empty(t, place.NameTokens("———"))
}

func TestNormalizeNameConcurrent(t *testing.T) {
	// The diacritic transformer chain is built per call, so parallel
	// callers must not interfere.
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if got := place.NormalizeName("Café Müller — Tennis & Padel"); got != "cafe muller tennis padel" {
					t.Errorf("NormalizeName() = %q", got)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
