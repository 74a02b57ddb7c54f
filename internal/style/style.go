package style

import (
	"fmt"

	"github.com/cgchiraggupta/kalakar/models"
)

// FontCatalog is the fixed set of font families the editor offers.
// Export uses the same list, so a style never references a font the
// burn-in step cannot resolve.
var FontCatalog = []string{
	"Inter",
	"Roboto",
	"Montserrat",
	"Oswald",
	"Poppins",
	"Bangers",
	"Courier New",
}

// Default returns a fully populated caption style. Every field is set:
// the rest of the pipeline relies on never seeing a partial style.
func Default() models.CaptionStyle {
	return models.CaptionStyle{
		FontFamily:    "Inter",
		FontSize:      32,
		TextColor:     "#FFFFFF",
		BgColor:       "#000000",
		Position:      models.PositionBottom,
		Bold:          false,
		Italic:        false,
		DropShadow:    true,
		Outline:       false,
		OutlineColor:  "#000000",
		Padding:       12,
		CornerRadius:  6,
		Opacity:       0.8,
		LetterSpacing: 0,
		LineHeight:    1.2,
	}
}

// templates is the static preset catalog. A template overwrites only
// the fields it names; everything else keeps its current value.
var templates = map[string]models.Template{
	"minimal": {
		Name:       "minimal",
		FontFamily: "Inter",
		FontSize:   28,
		TextColor:  "#FFFFFF",
		Bold:       false,
		DropShadow: false,
	},
	"bold-pop": {
		Name:       "bold-pop",
		FontFamily: "Montserrat",
		FontSize:   40,
		TextColor:  "#FFD700",
		Bold:       true,
		DropShadow: true,
	},
	"classic": {
		Name:       "classic",
		FontFamily: "Roboto",
		FontSize:   32,
		TextColor:  "#FFFFFF",
		Bold:       false,
		DropShadow: true,
	},
	"headline": {
		Name:       "headline",
		FontFamily: "Oswald",
		FontSize:   44,
		TextColor:  "#FFFFFF",
		Bold:       true,
		DropShadow: false,
	},
	"comic": {
		Name:       "comic",
		FontFamily: "Bangers",
		FontSize:   38,
		TextColor:  "#FFF200",
		Bold:       false,
		DropShadow: true,
	},
}

// Templates lists the catalog in no particular order.
func Templates() []models.Template {
	out := make([]models.Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	return out
}

// ApplyTemplate overlays the named preset onto s and returns the
// result. The input style is not modified. Unknown names are an error.
func ApplyTemplate(s models.CaptionStyle, name string) (models.CaptionStyle, error) {
	tpl, ok := templates[name]
	if !ok {
		return s, fmt.Errorf("unknown template %q", name)
	}
	s.FontFamily = tpl.FontFamily
	s.FontSize = tpl.FontSize
	s.TextColor = tpl.TextColor
	s.Bold = tpl.Bold
	s.DropShadow = tpl.DropShadow
	return s, nil
}

// Validate checks that s can be rendered and burned in.
func Validate(s models.CaptionStyle) error {
	if !fontInCatalog(s.FontFamily) {
		return fmt.Errorf("font family %q is not in the catalog", s.FontFamily)
	}
	if s.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got %d", s.FontSize)
	}
	switch s.Position {
	case models.PositionTop, models.PositionCenter, models.PositionBottom:
	default:
		return fmt.Errorf("invalid position %q", s.Position)
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("opacity must be within [0, 1], got %v", s.Opacity)
	}
	if s.Padding < 0 || s.CornerRadius < 0 {
		return fmt.Errorf("padding and corner radius must be non-negative")
	}
	if s.LineHeight <= 0 {
		return fmt.Errorf("line height must be positive, got %v", s.LineHeight)
	}
	return nil
}

func fontInCatalog(name string) bool {
	for _, f := range FontCatalog {
		if f == name {
			return true
		}
	}
	return false
}
