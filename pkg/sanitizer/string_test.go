package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "Sprinter 519", "Sprinter 519"},
		{"leading and trailing space", "  Bus-123  ", "Bus-123"},
		{"internal whitespace runs", "Neoplan   Tourliner", "Neoplan Tourliner"},
		{"tabs and newlines", "Setra\t S 516\nHD", "Setra S 516 HD"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n ", ""},
		{"unicode city name", "  Нижний   Новгород ", "Нижний Новгород"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel("  Mercedes-Benz "); got != "mercedes-benz" {
		t.Errorf("NormalizeLabel = %q, want %q", got, "mercedes-benz")
	}
}
