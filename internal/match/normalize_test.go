package match

import (
	"testing"
)

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AM1", "am1"},
		{"validate_drp", "validatedrp"},
		{"validate-drp", "validatedrp"},
		{"validate_drp.AM1.design_gri", "validatedrp.am1.designgri"},
		{"validate_drp:cfht_gri#base", "validatedrp:cfhtgri#base"},
		{"dir/sub#frag", "dir/sub#frag"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeRef(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeRef(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
