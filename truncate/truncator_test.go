package truncate

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, DefaultEndSuffix, New(FromEnd).Suffix())
	assert.Equal(t, DefaultEndSuffix, New(FromStart).Suffix())
	assert.Equal(t, DefaultMiddleSuffix, New(FromMiddle).Suffix())
	assert.Equal(t, FromMiddle, New(FromMiddle).Strategy())
	assert.Equal(t, "~", New(FromEnd).WithSuffix("~").Suffix())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name        string
		strategy    Strategy
		text        string
		max         int
		want        string
		wantClipped bool
	}{
		{name: "fits", strategy: FromEnd, text: "hello", max: 5, want: "hello"},
		{name: "end", strategy: FromEnd, text: "hello world", max: 8, want: "hello...", wantClipped: true},
		{name: "start", strategy: FromStart, text: "hello world", max: 8, want: "...world", wantClipped: true},
		{name: "middle", strategy: FromMiddle, text: "abcdefghij", max: 7, want: "abc|hij", wantClipped: true},
		{name: "marker does not fit", strategy: FromEnd, text: "hello world", max: 2, want: "he", wantClipped: true},
		{name: "zero limit", strategy: FromEnd, text: "x", max: 0, want: "", wantClipped: true},
		{name: "runes not bytes", strategy: FromEnd, text: "ünïcödé", max: 5, want: "ün...", wantClipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.strategy)
			if tt.strategy == FromMiddle {
				tr.WithSuffix("|")
			}
			got, clipped := tr.Truncate(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantClipped, clipped)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), max(tt.max, 0))
		})
	}
}

func TestToLength(t *testing.T) {
	assert.Equal(t, "short", ToLength("short", 10))
	assert.Equal(t, "get_de...", ToLength("get_device_names", 9))
}

func TestToLines(t *testing.T) {
	assert.Equal(t, "a\nb", ToLines("a\nb", 2))
	assert.Equal(t, "a\nb\n...", ToLines("a\nb\nc", 2))
	assert.Equal(t, "", ToLines("a", 0))
}
