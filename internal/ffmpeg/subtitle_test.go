package ffmpeg

import (
	"strings"
	"testing"

	"github.com/cgchiraggupta/kalakar/internal/style"
	"github.com/cgchiraggupta/kalakar/internal/timeline"
	"github.com/cgchiraggupta/kalakar/models"
)

func TestASSTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{1.5, "0:00:01.50"},
		{61.25, "0:01:01.25"},
		{3599.999, "1:00:00.00"}, // rounding spillover cascades through min/hour
		{3661.01, "1:01:01.01"},
		{-5, "0:00:00.00"},
	}
	for _, tt := range tests {
		if got := assTimestamp(tt.seconds); got != tt.want {
			t.Errorf("assTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestASSColor(t *testing.T) {
	tests := []struct {
		hex     string
		opacity float64
		want    string
	}{
		{"#FFFFFF", 1.0, "&H00FFFFFF&"},
		{"#FF0000", 1.0, "&H000000FF&"}, // BGR ordering
		{"#000000", 0.0, "&HFF000000&"}, // fully transparent
		{"#112233", 1.0, "&H00332211&"},
		{"garbage", 1.0, "&H00FFFFFF&"}, // malformed input falls back to white
	}
	for _, tt := range tests {
		if got := assColor(tt.hex, tt.opacity); got != tt.want {
			t.Errorf("assColor(%q, %v) = %q, want %q", tt.hex, tt.opacity, got, tt.want)
		}
	}
}

func TestGenerateASS(t *testing.T) {
	captions := []timeline.Caption{
		{Text: "first line", StartTime: 0, EndTime: 2.5},
		{Text: "second", StartTime: 2.5, EndTime: 5},
		{Text: "inverted", StartTime: 9, EndTime: 9}, // must be skipped
	}
	s := style.Default()
	s.Position = models.PositionTop

	script := GenerateASS(captions, s)

	if !strings.Contains(script, "[Script Info]") || !strings.Contains(script, "[Events]") {
		t.Fatal("missing required ASS sections")
	}
	if !strings.Contains(script, "Dialogue: 0,0:00:00.00,0:00:02.50,Captions,,0,0,0,,first line") {
		t.Errorf("first dialogue line malformed:\n%s", script)
	}
	if strings.Contains(script, "inverted") {
		t.Error("caption with start >= end must not be emitted")
	}
	// Alignment 8 = top.
	if !strings.Contains(script, ",8,") {
		t.Errorf("top position should map to alignment 8:\n%s", script)
	}
	if !strings.Contains(script, "Style: Captions,Inter,32,") {
		t.Errorf("style line should carry font family and size:\n%s", script)
	}
}

func TestGenerateASSEscapesText(t *testing.T) {
	captions := []timeline.Caption{
		{Text: "line one\nline two {with braces}", StartTime: 0, EndTime: 1},
	}
	script := GenerateASS(captions, style.Default())
	if !strings.Contains(script, `line one\Nline two \{with braces\}`) {
		t.Errorf("text not escaped:\n%s", script)
	}
}

func TestBurnInArgs(t *testing.T) {
	args := BurnInArgs("in.mp4", "subs.ass", "out.mp4", "high", "mp4")

	joined := strings.Join(args, " ")
	for _, want := range []string{"-i in.mp4", "ass=subs.ass", "-crf 18", "libx264", "out.mp4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output file must be the final argument: %v", args)
	}
}

func TestSupportedQualityAndFormat(t *testing.T) {
	for _, q := range []string{"low", "medium", "high"} {
		if !SupportedQuality(q) {
			t.Errorf("quality %q should be supported", q)
		}
	}
	if SupportedQuality("ultra") {
		t.Error("unknown quality accepted")
	}
	for _, f := range []string{"mp4", "webm", "mov"} {
		if !SupportedFormat(f) {
			t.Errorf("format %q should be supported", f)
		}
	}
	if SupportedFormat("avi") {
		t.Error("unknown format accepted")
	}
}
