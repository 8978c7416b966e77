package config

import "testing"

func TestFormatPage(t *testing.T) {
	tests := []struct {
		basename string
		page     int
		want     string
	}{
		{"page_{page:03d}", 1, "page_001"},
		{"page_{page:03d}", 42, "page_042"},
		{"page_{page:03d}", 1234, "page_1234"},
		{"page_{page}", 7, "page_7"},
		{"{page:02d}_sheet", 3, "03_sheet"},
		{"p{page}-{page:04d}", 5, "p5-0005"},
		{"noplaceholder", 2, "noplaceholder_2"},
	}

	for _, tt := range tests {
		if got := FormatPage(tt.basename, tt.page); got != tt.want {
			t.Errorf("FormatPage(%q, %d) = %q, want %q", tt.basename, tt.page, got, tt.want)
		}
	}
}

func TestHasPagePlaceholder(t *testing.T) {
	if !HasPagePlaceholder("page_{page:03d}") {
		t.Error("padded placeholder not detected")
	}
	if !HasPagePlaceholder("x{page}y") {
		t.Error("bare placeholder not detected")
	}
	if HasPagePlaceholder("page_01") {
		t.Error("literal name should not match")
	}
}

func TestPageFileName(t *testing.T) {
	if got := PageFileName("page_{page:03d}", 9, "png"); got != "page_009.png" {
		t.Errorf("PageFileName = %q", got)
	}
	if got := PageFileName("p_{page}", 10, ".jpg"); got != "p_10.jpg" {
		t.Errorf("PageFileName = %q", got)
	}
}
