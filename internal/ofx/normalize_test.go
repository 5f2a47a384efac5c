package ofx

import (
	"strings"
	"testing"
)

func TestNormalizeDescription(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "PAG IFOOD", "PAG IFOOD"},
		{"surrounding whitespace", "  COMPRA MERCADO  ", "COMPRA MERCADO"},
		{"internal runs", "PAG\t\tBOLETO   AGUA", "PAG BOLETO AGUA"},
		{"newlines", "TED\nRECEBIDA", "TED RECEBIDA"},
		{"empty", "", DefaultDescription},
		{"whitespace only", " \t\n ", DefaultDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDescription(tc.input); got != tc.want {
				t.Errorf("NormalizeDescription(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeDescription_Truncates(t *testing.T) {
	long := strings.Repeat("ã", 300)
	got := NormalizeDescription(long)
	if n := len([]rune(got)); n != 255 {
		t.Errorf("expected 255 runes, got %d", n)
	}
}
