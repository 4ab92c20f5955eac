/*
Package glyphing defines the interface between text and glyphs.

A Shaper turns a run of text, consisting of code-points of a single script and
direction, into a sequence of positioned glyphs from a font. Glyphs carry the
byte range of the source text they have been created from (their cluster).
Shapers output glyphs in logical order, i.e. ordered by cluster position,
regardless of text direction; reordering to visual order is left to
line assembly.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphing

import (
	"fmt"

	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/core/font"
	"golang.org/x/text/language"
)

// Direction is the direction to typeset text in.
type Direction int8

// Direction to typeset text in. Neutral is used for runs which take their
// direction from the surrounding text.
const (
	LeftToRight Direction = iota
	RightToLeft
	Neutral
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "LTR"
	case RightToLeft:
		return "RTL"
	}
	return "neutral"
}

// GlyphIndex is a glyph ID within a font.
type GlyphIndex uint32

// NotdefGlyph is the glyph ID every font uses for missing glyphs.
const NotdefGlyph GlyphIndex = 0

// A ShapedGlyph is a glyph from a font, positioned at the font's size.
// Advances and offsets are in scaled big points.
type ShapedGlyph struct {
	GID          GlyphIndex         // glyph index within Face
	Face         *font.ScalableFont // font the glyph is taken from
	XAdvance     dimen.Dimen        // advance after glyph has been set
	YAdvance     dimen.Dimen        //
	XOffset      dimen.Dimen        // position of glyph relative to the pen
	YOffset      dimen.Dimen        //
	ClusterStart int                // byte position of the glyph's cluster in the source text
	ClusterEnd   int                // byte position after the cluster
	CodePoint    rune               // first code-point of the cluster
	Notdef       bool               // no font has a glyph for this code-point
}

func (g ShapedGlyph) String() string {
	nd := ""
	if g.Notdef {
		nd = ", notdef"
	}
	return fmt.Sprintf("(GID=%d, %q@[%d:%d], advance=%s%s)", g.GID, g.CodePoint,
		g.ClusterStart, g.ClusterEnd, g.XAdvance, nd)
}

// Span is a range of byte positions [Start…End) within a text.
type Span struct {
	Start, End int
}

// Len returns the length of a span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains is true if position pos lies within span s.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// A Shaper creates a sequence of glyphs from a sequence of
// Unicode code-points. Glyphs are taken from a font, given in a specific point-size.
//
// Shape shapes the part span of text. Text outside of span is used as
// context only. Glyphs will be appended to buf, which may be nil.
// Cluster positions of the resulting glyphs refer to text, not to span.
//
// Missing glyphs are not an error. They will be substituted from fallback fonts,
// if Params carries a Fallback, or else be flagged as notdef.
type Shaper interface {
	Shape(text string, span Span, buf []ShapedGlyph, params Params) (GlyphSequence, error)
}

// Fallback finds a substitute font for code-points the run's font has no glyph for.
type Fallback interface {
	FallbackFor(r rune, prev *font.ScalableFont) (*font.ScalableFont, bool)
}

// Params collects shaping parameters.
type Params struct {
	Font      *font.TypeCase  // use a font at a given point-size
	Direction Direction       // writing direction
	Script    language.Script // 4-letter ISO 15924 script identifier; zero means: detect
	Language  language.Tag    // BCP 47 language tag
	Features  []Feature       // OpenType features to apply
	Fallback  Fallback        // fallback fonts, may be nil
}

// Feature tells a shaper to turn a certain OpenType feature on or off for
// a run. Value 0 turns a feature off, 1 turns it on; some features take
// other values as an argument.
type Feature struct {
	Tag   string // 4-letter feature tag
	Value int
}

// GlyphSequence contains a sequence of shaped glyphs.
type GlyphSequence struct {
	Glyphs  []ShapedGlyph // resulting sequence of glyphs, in logical order
	W, H, D dimen.Dimen   // width, height, depth of bounding box
}

// BoundingBox returns width, height and depth of a glyph sequence. Height
// and depth are taken from the line metrics of the fonts involved.
func (seq GlyphSequence) BoundingBox() (w dimen.Dimen, h dimen.Dimen, d dimen.Dimen) {
	return seq.W, seq.H, seq.D
}

// Clusters counts the distinct clusters of a glyph sequence.
func (seq GlyphSequence) Clusters() int {
	n, last := 0, -1
	for _, g := range seq.Glyphs {
		if g.ClusterStart != last {
			n++
			last = g.ClusterStart
		}
	}
	return n
}
