package models

import (
	"github.com/google/uuid"
)

// Caption position on the video frame.
const (
	PositionTop    = "top"
	PositionCenter = "center"
	PositionBottom = "bottom"
)

// CaptionStyle is the single style descriptor applied uniformly to all
// captions in a project. It is always fully populated; defaults are
// applied at initialization so no partial style ever reaches the
// preview or export path.
type CaptionStyle struct {
	ProjectID     uuid.UUID `json:"project_id,omitempty"`
	FontFamily    string    `json:"font_family"`
	FontSize      int       `json:"font_size"` // pixels
	TextColor     string    `json:"text_color"`
	BgColor       string    `json:"bg_color"`
	Position      string    `json:"position"` // top | center | bottom
	Bold          bool      `json:"bold"`
	Italic        bool      `json:"italic"`
	DropShadow    bool      `json:"drop_shadow"`
	Outline       bool      `json:"outline"`
	OutlineColor  string    `json:"outline_color"`
	Padding       int       `json:"padding"`
	CornerRadius  int       `json:"corner_radius"`
	Opacity       float64   `json:"opacity"` // 0-1
	LetterSpacing float64   `json:"letter_spacing"`
	LineHeight    float64   `json:"line_height"`
}
