package utils

import "testing"

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Álvaro Obregón", "Alvaro Obregon"},
		{"Coyoacán", "Coyoacan"},
		{"año", "ano"},
		{"crème brûlée", "creme brulee"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripDiacritics(tt.in); got != tt.want {
			t.Errorf("StripDiacritics(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripDiacriticsDropsNonASCII(t *testing.T) {
	// Runes with no ASCII decomposition disappear, matching an
	// ascii-with-ignore encoding pass.
	if got := StripDiacritics("niño 🎉 ß"); got != "nino  " {
		t.Errorf("StripDiacritics dropped wrong runes: %q", got)
	}
}
