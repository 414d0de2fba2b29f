package colour

import (
	"strings"
	"testing"
)

func TestHalfBlocks(t *testing.T) {
	got := HalfBlocks([]RGB{{R: 255}, {G: 1}}, []RGB{{B: 2}, {R: 3, G: 4, B: 5}})
	want := "\033[38;2;255;0;0m\033[48;2;0;0;2m▀" +
		"\033[38;2;0;1;0m\033[48;2;3;4;5m▀" +
		"\033[0m"
	if got != want {
		t.Errorf("HalfBlocks() = %q, want %q", got, want)
	}
}

func TestFormatColourWithPreview(t *testing.T) {
	got := FormatColourWithPreview(RGB{R: 0x1a, G: 0x2b, B: 0x3c}, 0)
	if !strings.HasSuffix(got, " #1a2b3c") {
		t.Errorf("FormatColourWithPreview() = %q", got)
	}
	if strings.Count(got, " ") != defaultWidth+1 {
		t.Errorf("want %d preview cells, got %q", defaultWidth, got)
	}
}
