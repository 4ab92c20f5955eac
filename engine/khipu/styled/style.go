package styled

import (
	"fmt"

	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/ringtext/engine/glyphing"
	xfont "golang.org/x/image/font"
	"golang.org/x/text/language"
)

/*
We take the following properties as relevant for runs of text

font-family
font-style
font-weight
font-size
font-feature-settings
lang
script
direction (as an override, like CSS unicode-bidi: bidi-override)
*/

// Style holds the properties of a run of text.
type Style struct {
	Family    string             // font family, resolved by the font catalog
	Size      dimen.Dimen        // font size
	Style     xfont.Style        // normal, italic or oblique
	Weight    xfont.Weight       // font weight
	Language  language.Tag       // language hint for shaping, may be Und
	Script    language.Script    // script hint; zero value means: detect
	Direction glyphing.Direction // direction override; Neutral means: no override
	Features  []glyphing.Feature // OpenType features
}

// DefaultFontSize is the font size of DefaultStyle.
const DefaultFontSize = 12 * dimen.BP

// DefaultStyle returns a style using the Go font at 12bp, without overrides.
func DefaultStyle() Style {
	return Style{
		Family:    font.FallbackFont().Family,
		Size:      DefaultFontSize,
		Style:     xfont.StyleNormal,
		Weight:    xfont.WeightNormal,
		Direction: glyphing.Neutral,
	}
}

// WithSize returns a copy of s with font size sz.
func (s Style) WithSize(sz dimen.Dimen) Style {
	s.Size = sz
	return s
}

// Bold returns a copy of s with bold weight.
func (s Style) Bold() Style {
	s.Weight = xfont.WeightBold
	return s
}

// Italic returns a copy of s with italic style.
func (s Style) Italic() Style {
	s.Style = xfont.StyleItalic
	return s
}

// Override returns a copy of s forcing direction dir.
func (s Style) Override(dir glyphing.Direction) Style {
	s.Direction = dir
	return s
}

// SameFont is true if two styles select the same font at the same size.
func (s Style) SameFont(other Style) bool {
	return font.NormalizeFamily(s.Family) == font.NormalizeFamily(other.Family) &&
		s.Size == other.Size && s.Style == other.Style && s.Weight == other.Weight
}

func (s Style) String() string {
	return fmt.Sprintf("[%s|%s@%.1fbp]", s.Family, font.VariantName(s.Style, s.Weight), s.Size.Points())
}
