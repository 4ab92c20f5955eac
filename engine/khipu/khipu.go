/*
Package khipu encodes shaped paragraphs as strings of knots.

A khipu is a sequence of knots, resembling TeX's horizontal lists: text boxes
hold shaped glyphs which must not be broken, glue holds inter-word space which
may stretch or shrink, penalties mark legal line breaks, and discretionaries
mark hyphenation points which insert a hyphen when a line is broken there.

Knots are in logical order. Every knot carries the embedding level of its text,
which line assembly uses to reorder knots into visual order.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package khipu

import (
	"fmt"
	"strings"

	"github.com/npillmayer/ringtext/core/dimen"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/segment"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.khipu'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.khipu")
}

// KnotType is the type of a knot.
type KnotType int8

// Types of knots.
const (
	KTTextBox KnotType = iota
	KTGlue
	KTPenalty
	KTDiscretionary
)

var knotTypeNames = [...]string{"box", "glue", "penalty", "discretionary"}

func (kt KnotType) String() string {
	if kt < 0 || int(kt) >= len(knotTypeNames) {
		return "?"
	}
	return knotTypeNames[kt]
}

// Knot is an item of a khipu.
type Knot interface {
	Type() KnotType
	W() dimen.Dimen      // natural width
	Span() glyphing.Span // range of source text
	String() string
}

// TextBox is a sequence of shaped glyphs which must not be broken.
// All glyphs of a box are from a single shaped run.
type TextBox struct {
	Glyphs  []glyphing.ShapedGlyph // glyphs in logical order
	Width   dimen.Dimen
	Height  dimen.Dimen
	Depth   dimen.Dimen
	Level   uint8 // bidi embedding level
	Run     int   // index of the shaped run the glyphs are taken from
	TextPos glyphing.Span
}

// NewTextBox creates a box from glyphs. Width is the sum of the glyphs'
// advances.
func NewTextBox(glyphs []glyphing.ShapedGlyph, span glyphing.Span) *TextBox {
	b := &TextBox{Glyphs: glyphs, TextPos: span}
	for _, g := range glyphs {
		b.Width += g.XAdvance
	}
	return b
}

// Type is part of interface Knot.
func (b *TextBox) Type() KnotType { return KTTextBox }

// W is part of interface Knot.
func (b *TextBox) W() dimen.Dimen { return b.Width }

// Span is part of interface Knot.
func (b *TextBox) Span() glyphing.Span { return b.TextPos }

func (b *TextBox) String() string {
	return fmt.Sprintf("[box %d:%d w=%.2f]", b.TextPos.Start, b.TextPos.End, b.Width.Points())
}

// Glue is stretchable space. Glue keeps the glyphs of the whitespace it has
// been created from.
type Glue struct {
	Glyphs  []glyphing.ShapedGlyph
	Width   dimen.Dimen
	Stretch dimen.Dimen
	Shrink  dimen.Dimen
	Height  dimen.Dimen
	Depth   dimen.Dimen
	Level   uint8
	Run     int
	TextPos glyphing.Span
}

// Type is part of interface Knot.
func (g *Glue) Type() KnotType { return KTGlue }

// W is part of interface Knot.
func (g *Glue) W() dimen.Dimen { return g.Width }

// Span is part of interface Knot.
func (g *Glue) Span() glyphing.Span { return g.TextPos }

func (g *Glue) String() string {
	return fmt.Sprintf("[glue %.2f+%.2f-%.2f]", g.Width.Points(), g.Stretch.Points(), g.Shrink.Points())
}

// PenaltyKnot marks a legal line break at text position At. A line broken
// at a penalty ends before At.
type PenaltyKnot struct {
	At    int
	P     int // penalty value; -InfinitePenalty forces a break
	Class segment.BreakClass
}

// Penalty creates a penalty knot at text position pos. Penalties at or below
// -InfinitePenalty are mandatory breaks.
func Penalty(p int, pos int) *PenaltyKnot {
	pk := &PenaltyKnot{At: pos, P: p, Class: segment.BreakConditional}
	if p <= -params.InfinitePenalty {
		pk.P, pk.Class = -params.InfinitePenalty, segment.BreakMandatory
	}
	return pk
}

// Type is part of interface Knot.
func (p *PenaltyKnot) Type() KnotType { return KTPenalty }

// W is part of interface Knot.
func (p *PenaltyKnot) W() dimen.Dimen { return 0 }

// Span is part of interface Knot.
func (p *PenaltyKnot) Span() glyphing.Span { return glyphing.Span{Start: p.At, End: p.At} }

// Forced is true for mandatory breaks.
func (p *PenaltyKnot) Forced() bool { return p.Class == segment.BreakMandatory }

func (p *PenaltyKnot) String() string {
	return fmt.Sprintf("[penalty %d %s]", p.P, p.Class)
}

// Discretionary is a hyphenation point. If a line is broken here, the
// pre-break glyphs (usually a hyphen) end the line; otherwise it is empty.
type Discretionary struct {
	PenaltyKnot
	Pre    []glyphing.ShapedGlyph
	PreW   dimen.Dimen
	Height dimen.Dimen
	Depth  dimen.Dimen
	Level  uint8
	Run    int
}

// Type is part of interface Knot.
func (d *Discretionary) Type() KnotType { return KTDiscretionary }

func (d *Discretionary) String() string {
	return fmt.Sprintf("[disc %d pre=%.2f]", d.P, d.PreW.Points())
}

// --- Khipu -----------------------------------------------------------------

// Khipu is a string of knots.
type Khipu struct {
	knots []Knot
}

// NewKhipu creates an empty khipu.
func NewKhipu() *Khipu {
	return &Khipu{knots: make([]Knot, 0, 32)}
}

// AppendKnot appends a knot and returns the khipu.
func (k *Khipu) AppendKnot(knot Knot) *Khipu {
	k.knots = append(k.knots, knot)
	return k
}

// AppendKhipu appends all knots of another khipu.
func (k *Khipu) AppendKhipu(other *Khipu) *Khipu {
	if other != nil {
		k.knots = append(k.knots, other.knots...)
	}
	return k
}

// Length returns the number of knots.
func (k *Khipu) Length() int {
	return len(k.knots)
}

// At returns knot i.
func (k *Khipu) At(i int) Knot {
	return k.knots[i]
}

// Knots returns the knots of a khipu. Clients must not modify the result.
func (k *Khipu) Knots() []Knot {
	return k.knots
}

func (k *Khipu) String() string {
	var b strings.Builder
	for _, knot := range k.knots {
		b.WriteString(knot.String())
	}
	return b.String()
}

// Cursor iterates over the knots of a khipu.
type Cursor struct {
	khipu *Khipu
	pos   int
}

// NewCursor creates a cursor positioned before the first knot of k.
func NewCursor(k *Khipu) *Cursor {
	return &Cursor{khipu: k, pos: -1}
}

// Next advances the cursor. It returns false at the end of the khipu.
func (c *Cursor) Next() bool {
	if c.pos+1 >= c.khipu.Length() {
		c.pos = c.khipu.Length()
		return false
	}
	c.pos++
	return true
}

// Knot returns the knot at the cursor position.
func (c *Cursor) Knot() Knot {
	return c.khipu.knots[c.pos]
}

// Position returns the index of the knot at the cursor position.
func (c *Cursor) Position() int {
	return c.pos
}
