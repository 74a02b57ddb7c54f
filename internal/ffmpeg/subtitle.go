package ffmpeg

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cgchiraggupta/kalakar/internal/timeline"
	"github.com/cgchiraggupta/kalakar/models"
)

// GenerateASS renders the caption collection and its style as an ASS
// subtitle script for the ffmpeg ass filter. ASS is used instead of SRT
// because it carries the full style (colors, box, outline, alignment)
// inside the file, so the burn-in command needs no force_style overrides.
func GenerateASS(captions []timeline.Caption, s models.CaptionStyle) string {
	var b strings.Builder

	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("ScaledBorderAndShadow: yes\n\n")

	borderStyle := 1 // outline + shadow
	if s.BgColor != "" {
		borderStyle = 3 // opaque box behind the text
	}
	outline := 0
	if s.Outline {
		outline = 2
	}
	shadow := 0
	if s.DropShadow {
		shadow = 2
	}

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, BackColour, OutlineColour, Bold, Italic, Spacing, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV\n")
	fmt.Fprintf(&b, "Style: Captions,%s,%d,%s,%s,%s,%d,%d,%g,%d,%d,%d,%d,%d,%d,%d\n\n",
		s.FontFamily,
		s.FontSize,
		assColor(s.TextColor, 1.0),
		assColor(s.BgColor, s.Opacity),
		assColor(s.OutlineColor, 1.0),
		assBool(s.Bold),
		assBool(s.Italic),
		s.LetterSpacing,
		borderStyle,
		outline,
		shadow,
		assAlignment(s.Position),
		s.Padding,
		s.Padding,
		verticalMargin(s),
	)

	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range captions {
		if c.StartTime >= c.EndTime {
			continue
		}
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Captions,,0,0,0,,%s\n",
			assTimestamp(c.StartTime),
			assTimestamp(c.EndTime),
			escapeASSText(c.Text),
		)
	}
	return b.String()
}

// WriteASS writes the rendered script to path with owner-only access.
func WriteASS(path string, captions []timeline.Caption, s models.CaptionStyle) error {
	return os.WriteFile(path, []byte(GenerateASS(captions, s)), 0600)
}

// assTimestamp formats seconds as H:MM:SS.cc (centisecond precision).
func assTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	sec := int(seconds) % 60
	cs := int(math.Round((seconds - math.Floor(seconds)) * 100))
	if cs == 100 { // rounding spillover, e.g. 1.9999
		cs = 0
		sec++
		if sec == 60 {
			sec = 0
			m++
			if m == 60 {
				m = 0
				h++
			}
		}
	}
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, sec, cs)
}

// assColor converts "#RRGGBB" to ASS's &HAABBGGRR& form. ASS alpha is
// inverted: 00 is opaque, FF fully transparent.
func assColor(hex string, opacity float64) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		hex = "FFFFFF"
	}
	r, g, bl := hex[0:2], hex[2:4], hex[4:6]
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	alpha := int(math.Round((1 - opacity) * 255))
	return fmt.Sprintf("&H%02X%s%s%s&", alpha, strings.ToUpper(bl), strings.ToUpper(g), strings.ToUpper(r))
}

// assAlignment maps the position enum to numpad-style ASS alignment.
func assAlignment(position string) int {
	switch position {
	case models.PositionTop:
		return 8
	case models.PositionCenter:
		return 5
	default: // bottom
		return 2
	}
}

// verticalMargin scales the configured padding into a vertical margin;
// centered text ignores it.
func verticalMargin(s models.CaptionStyle) int {
	if s.Position == models.PositionCenter {
		return 0
	}
	return s.Padding * 2
}

func assBool(v bool) int {
	if v {
		return -1 // ASS convention: -1 true, 0 false
	}
	return 0
}

// escapeASSText keeps user text from breaking the Dialogue line format.
func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", `\N`)
	text = strings.ReplaceAll(text, "{", `\{`)
	return strings.ReplaceAll(text, "}", `\}`)
}
