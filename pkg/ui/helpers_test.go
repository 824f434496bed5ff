package ui

import (
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "zero width", input: "hello", width: 0, want: ""},
		{name: "fits", input: "hello", width: 10, want: "hello"},
		{name: "ellipsis", input: "hello world", width: 6, want: "hello…"},
		{name: "wide runes", input: "日本語テキスト", width: 5, want: "日本…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.width)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q; want %q", tt.input, tt.width, got, tt.want)
			}
			if runewidth.StringWidth(got) > tt.width {
				t.Fatalf("truncate output is %d cells wide; max %d", runewidth.StringWidth(got), tt.width)
			}
		})
	}
}

func TestFormatTimeRel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(time.Hour), "now"},
		{now.Add(-30 * time.Second), "now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-2 * 24 * time.Hour), "2d ago"},
		{now.Add(-15 * 24 * time.Hour), "2w ago"},
		{now.Add(-65 * 24 * time.Hour), "2mo ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeRel(tt.t, now); got != tt.want {
			t.Errorf("FormatTimeRel(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(300 * time.Millisecond); got != "300ms" {
		t.Errorf("got %q", got)
	}
	if got := formatDuration(2 * time.Second); got != "2s" {
		t.Errorf("got %q", got)
	}
}
