package render

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		wantHex string
		wantErr bool
	}{
		{"#000000ff", "#000000ff", false},
		{"#00000000", "#00000000", false},
		{"#ff0000", "#ff0000ff", false},
		{"#f00", "#ff0000ff", false},
		{"#FF000080", "#ff000080", false},
		{"white", "#ffffffff", false},
		{" Red ", "#ff0000ff", false},
		{"transparent", "#00000000", false},
		{"navy", "#000080ff", false},
		{"Cyan", "#00ffffff", false},
		{"teal", "#008080ff", false},
		{"", "", true},
		{"#12345", "", true},
		{"#gg0000ff", "", true},
		{"#000000zz", "", true},
		{"chartreuse-ish", "", true},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && c.Hex() != tt.wantHex {
			t.Errorf("ParseColor(%q).Hex() = %q, want %q", tt.in, c.Hex(), tt.wantHex)
		}
	}
}

func TestColor_Opacity(t *testing.T) {
	c, _ := ParseColor("#00000000")
	if got := c.Opacity(); got != "0.000" {
		t.Errorf("Opacity() = %q, want 0.000", got)
	}
	c, _ = ParseColor("#123456")
	if got := c.Opacity(); got != "1.000" {
		t.Errorf("Opacity() = %q, want 1.000", got)
	}
	if got := c.RGB(); got != "#123456" {
		t.Errorf("RGB() = %q, want #123456", got)
	}
}

func TestFallbackColors(t *testing.T) {
	tests := []struct {
		in     string
		fg, bg string
	}{
		{"", "#000000ff", "#00000000"},
		{"chartreuse-ish", "#000000ff", "#00000000"},
		{"#12", "#000000ff", "#00000000"},
		{"magenta", "#ff00ffff", "#ff00ffff"},
		{"#11223344", "#11223344", "#11223344"},
	}
	for _, tt := range tests {
		if got := ForegroundColor(tt.in).Hex(); got != tt.fg {
			t.Errorf("ForegroundColor(%q) = %q, want %q", tt.in, got, tt.fg)
		}
		if got := BackgroundColor(tt.in).Hex(); got != tt.bg {
			t.Errorf("BackgroundColor(%q) = %q, want %q", tt.in, got, tt.bg)
		}
	}
}
