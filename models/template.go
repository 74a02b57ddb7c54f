package models

// Template is a named, read-only style preset. Templates overwrite a
// subset of CaptionStyle fields when applied; they are catalog data,
// not user-editable rows.
type Template struct {
	Name       string  `json:"name"`
	FontFamily string  `json:"font_family"`
	FontSize   int     `json:"font_size"`
	TextColor  string  `json:"text_color"`
	Bold       bool    `json:"bold"`
	DropShadow bool    `json:"drop_shadow"`
	PreviewURL *string `json:"preview_url,omitempty"`
}
