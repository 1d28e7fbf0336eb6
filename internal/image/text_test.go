package imagepkg

import (
	"image"
	"image/color"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/image/font/basicfont"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 20, nil},
		{"   ", 20, nil},
		{"Movies", 20, []string{"Movies"}},
		{"My Favourite Films Collection", 20, []string{"My Favourite Films", "Collection"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a abcdefghij b", 4, []string{"a", "abcd", "efgh", "ij", "b"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"电影 收藏 合集", 4, []string{"电影", "收藏", "合集"}},
	}

	for _, tt := range tests {
		got := Wrap(tt.text, tt.width)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestWrap_NeverExceedsWidth(t *testing.T) {
	inputs := []string{
		"The Quick Brown Fox Jumps Over The Lazy Dog Again And Again",
		"Supercalifragilisticexpialidocious and antidisestablishmentarianism",
		strings.Repeat("x", 95),
		"日本語のタイトルはとても長いことがありますのでちゃんと折り返す",
		"tab\tseparated\nand newline words",
		"Cafe\u0301 cre\u0300me bru\u0302le\u0301e",
	}
	for _, width := range []int{1, 5, 20, 30} {
		for _, in := range inputs {
			lines := Wrap(in, width)
			if len(lines) == 0 {
				t.Fatalf("Wrap(%q, %d) returned no lines", in, width)
			}
			for _, line := range lines {
				if n := utf8.RuneCountInString(line); n > width {
					t.Errorf("Wrap(%q, %d) produced %q with %d runes", in, width, line, n)
				}
			}
			joined := strings.Join(strings.Fields(strings.Join(lines, "")), "")
			if want := strings.Join(strings.Fields(in), ""); joined != want {
				t.Errorf("Wrap(%q, %d) lost characters: %q", in, width, joined)
			}
		}
	}
}

func TestDrawLines_AdvancesByHeightAndGap(t *testing.T) {
	face := basicfont.Face7x13
	dst := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	lines := []string{"ab", "cd"}

	next := DrawLines(dst, face, color.White, 5, 10, lines, 4)

	want := 10
	for _, line := range lines {
		want += LineHeight(face, line) + 4
	}
	if next != want {
		t.Errorf("DrawLines returned y=%d, want %d", next, want)
	}

	painted := false
	for y := 10; y < next && !painted; y++ {
		for x := 5; x < 60; x++ {
			if dst.NRGBAAt(x, y).A != 0 {
				painted = true
				break
			}
		}
	}
	if !painted {
		t.Error("DrawLines did not paint any pixel")
	}
}

func TestDrawLines_NilFace(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if got := DrawLines(dst, nil, color.White, 0, 7, []string{"x"}, 3); got != 7 {
		t.Errorf("expected y unchanged for nil face, got %d", got)
	}
}
