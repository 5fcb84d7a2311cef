package mode

import "testing"

func TestIsValid(t *testing.T) {
	for _, m := range []Mode{Hybrid, Semantic, Keyword} {
		if !m.IsValid() {
			t.Errorf("mode %q should be valid", m)
		}
	}
	for _, m := range []Mode{"", "fuzzy", "HYBRID"} {
		if m.IsValid() {
			t.Errorf("mode %q should be invalid", m)
		}
	}
}
