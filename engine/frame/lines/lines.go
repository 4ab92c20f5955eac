package lines

import (
	"fmt"
	"strings"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/segment"
)

// Alignment is the horizontal alignment of lines within the measure of a
// paragraph. Start and end depend on the paragraph's base direction.
type Alignment int8

// Alignments of lines.
const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignJustify
)

var alignmentNames = [...]string{"start", "center", "end", "justify"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return "?"
	}
	return alignmentNames[a]
}

// ParseAlignment returns the alignment of a given name. "left" and "right"
// are accepted as aliases for start and end.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(s) {
	case "left":
		return AlignStart, nil
	case "right":
		return AlignEnd, nil
	}
	for i, name := range alignmentNames {
		if strings.EqualFold(s, name) {
			return Alignment(i), nil
		}
	}
	return AlignStart, core.Error(core.EINVALID, "unknown alignment %q", s)
}

// ItemKind is the type of a line item.
type ItemKind int8

// Kinds of line items.
const (
	TextItem ItemKind = iota
	SpaceItem
	HyphenItem // hyphen glyphs inserted at a hyphenation point
)

// Glyph is a shaped glyph positioned on a line.
type Glyph struct {
	glyphing.ShapedGlyph
	X dimen.Dimen // pen position, relative to the left edge of the line
}

// Item is a run of positioned glyphs of a single embedding level.
type Item struct {
	Kind    ItemKind
	Glyphs  []Glyph // in visual order
	X       dimen.Dimen
	Width   dimen.Dimen
	Level   uint8 // bidi embedding level
	Run     int   // index of the shaped run the glyphs are taken from
	Span    glyphing.Span
	Hanging bool // trailing whitespace without width
	stretch dimen.Dimen
	shrink  dimen.Dimen
}

// Direction returns the writing direction of an item.
func (it *Item) Direction() glyphing.Direction {
	return segment.LevelDirection(it.Level)
}

// Line is a line of a paragraph with items in visual order.
type Line struct {
	Items     []Item
	Width     dimen.Dimen // advance of the line's content
	Height    dimen.Dimen // max ascent of items
	Depth     dimen.Dimen // max descent of items
	Baseline  dimen.Dimen // distance of the baseline from the top of the paragraph
	Span      glyphing.Span
	Direction glyphing.Direction // paragraph direction
	Overflow  bool               // line holds unbreakable material wider than the measure
	Forced    bool               // line ends at an explicit line terminator
}

// Glyphs returns the glyphs of a line in visual order.
func (l *Line) Glyphs() []Glyph {
	var glyphs []Glyph
	for _, it := range l.Items {
		glyphs = append(glyphs, it.Glyphs...)
	}
	return glyphs
}

// Clusters returns the number of clusters of a line, excluding inserted
// hyphens.
func (l *Line) Clusters() int {
	n := 0
	for _, it := range l.Items {
		if it.Kind == HyphenItem {
			continue
		}
		for i, g := range it.Glyphs {
			if i == 0 || g.ClusterStart != it.Glyphs[i-1].ClusterStart {
				n++
			}
		}
	}
	return n
}

// ClusterAt returns the source range of the cluster at horizontal position
// x of a line. If x is outside of the line's content, false is returned.
func (l *Line) ClusterAt(x dimen.Dimen) (glyphing.Span, bool) {
	for _, it := range l.Items {
		if it.Hanging || x < it.X || x >= it.X+it.Width {
			continue
		}
		for i, g := range it.Glyphs {
			end := it.X + it.Width
			if i+1 < len(it.Glyphs) {
				end = it.Glyphs[i+1].X
			}
			if x >= g.X && x < end {
				return glyphing.Span{Start: g.ClusterStart, End: g.ClusterEnd}, true
			}
		}
	}
	return glyphing.Span{}, false
}

// Caret returns the horizontal position of a caret placed before text
// position offset. For right-to-left text the caret is at the right edge of
// the cluster. Positions not covered by a glyph, like the end of the line's
// span, place the caret after the logically last cluster.
func (l *Line) Caret(offset int) (dimen.Dimen, bool) {
	if offset < l.Span.Start || offset > l.Span.End {
		return 0, false
	}
	var after dimen.Dimen // caret after the logically last cluster
	lastPos := -1
	for _, it := range l.Items {
		if it.Kind == HyphenItem {
			continue
		}
		for i, g := range it.Glyphs {
			left, right := g.X, it.X+it.Width
			if i+1 < len(it.Glyphs) {
				right = it.Glyphs[i+1].X
			}
			if it.Hanging {
				right = left
			}
			if it.Level%2 == 1 {
				left, right = right, left
			}
			if g.ClusterStart <= offset && offset < g.ClusterEnd {
				return left, true
			}
			if g.ClusterEnd > lastPos {
				lastPos, after = g.ClusterEnd, right
			}
		}
	}
	return after, true
}

// Round rounds all horizontal positions and vertical metrics of a line to
// multiples of unit, usually the size of a device pixel. Advances of glyphs
// are left untouched.
func (l *Line) Round(unit dimen.Dimen) {
	for i := range l.Items {
		it := &l.Items[i]
		x := it.X
		it.X = x.Round(unit)
		it.Width = (x + it.Width).Round(unit) - it.X
		for j := range it.Glyphs {
			it.Glyphs[j].X = it.Glyphs[j].X.Round(unit)
		}
	}
	l.Width = l.Width.Round(unit)
	l.Height = l.Height.Round(unit)
	l.Depth = l.Depth.Round(unit)
	l.Baseline = l.Baseline.Round(unit)
}

func (l *Line) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "line[%d:%d] w=%.2f h=%.2f d=%.2f", l.Span.Start, l.Span.End,
		l.Width.Points(), l.Height.Points(), l.Depth.Points())
	if l.Overflow {
		b.WriteString(" overflow")
	}
	for _, it := range l.Items {
		fmt.Fprintf(&b, " (%d:%d@%.2f L%d)", it.Span.Start, it.Span.End, it.X.Points(), it.Level)
	}
	return b.String()
}

// SetBaselines sets the baselines of a sequence of lines. If skip is
// positive, baselines are skip apart unless the space between the descent
// of a line and the ascent of the next one would be less than limit, in
// which case lineskip is inserted between them. If skip is zero, lines are
// stacked with lineskip between them.
func SetBaselines(lines []Line, skip, lineskip, limit dimen.Dimen) {
	var y dimen.Dimen
	for i := range lines {
		l := &lines[i]
		if i == 0 {
			y = l.Height
		} else {
			prev := &lines[i-1]
			gap := lineskip
			if skip > 0 {
				if g := skip - prev.Depth - l.Height; g >= limit {
					gap = g
				}
			}
			y += prev.Depth + gap + l.Height
		}
		l.Baseline = y
	}
}
