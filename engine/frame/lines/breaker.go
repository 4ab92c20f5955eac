package lines

import (
	"unicode/utf8"

	"github.com/npillmayer/ringtext/core/dimen"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/khipu"
	"github.com/npillmayer/ringtext/engine/segment"
)

// Params are the parameters for breaking a paragraph into lines.
type Params struct {
	WrapWidth dimen.Dimen        // 0 = unconstrained
	Align     Alignment          //
	Direction glyphing.Direction // paragraph direction; Neutral is taken as left-to-right
	TextLen   int                // length of the paragraph's text in bytes
	Height    dimen.Dimen        // ascent of empty lines
	Depth     dimen.Dimen        // descent of empty lines
}

// BreakParagraph breaks a khipu into lines. Lines are reordered into visual
// order and aligned, but their baselines are not set.
//
// If p.WrapWidth is 0, lines are broken at explicit line terminators only,
// and are aligned within the width of the widest line.
func BreakParagraph(k *khipu.Khipu, p Params) []Line {
	b := &breaker{
		knots:      k.Knots(),
		wrap:       p.WrapWidth,
		shrinkable: p.Align == AlignJustify,
		p:          p,
	}
	if p.Direction == glyphing.RightToLeft {
		b.baseLevel = 1
	}
	var lines []Line
	start, pos := 0, 0
	for {
		end, forced, overflow := b.next(start)
		l := b.assemble(start, end)
		l.Forced, l.Overflow = forced, overflow
		l.Span.Start = pos
		if end < len(b.knots) {
			pos = b.knots[end].Span().Start
		} else {
			pos = p.TextLen
		}
		l.Span.End = pos
		tracer().Debugf("line %d: knots [%d:%d], text [%d:%d]", len(lines), start, end, l.Span.Start, l.Span.End)
		lines = append(lines, l)
		if end >= len(b.knots) {
			break
		}
		start = end + 1
	}
	measure := p.WrapWidth
	if measure == 0 {
		for i := range lines {
			measure = dimen.Max(measure, lines[i].Width)
		}
	}
	for i := range lines {
		last := i == len(lines)-1
		lines[i].align(measure, p.Align, !last && !lines[i].Forced, b.shrinkable)
	}
	return lines
}

type breaker struct {
	knots      []khipu.Knot
	wrap       dimen.Dimen
	shrinkable bool // glue may shrink to fit a line into the measure
	baseLevel  uint8
	p          Params
}

func (b *breaker) exceeds(w, shrink dimen.Dimen) bool {
	if b.shrinkable {
		return w-shrink > b.wrap
	}
	return w > b.wrap
}

// next finds the end of the line starting at knot start. It returns the
// index of the knot at which the line is broken, or the number of knots at
// the end of the paragraph.
func (b *breaker) next(start int) (end int, forced bool, overflow bool) {
	var w, trail, shrink, trailShrink dimen.Dimen
	best, bestW, bestClass, bestP := -1, dimen.Zero, segment.BreakConditional, 0
	for i := start; i < len(b.knots); i++ {
		var cw dimen.Dimen
		var pen int
		class := segment.BreakConditional
		switch kn := b.knots[i].(type) {
		case *khipu.TextBox:
			w += kn.Width
			trail, trailShrink = 0, 0
			if b.wrap > 0 && best >= 0 && b.exceeds(w, shrink) {
				return best, false, false
			}
			continue
		case *khipu.Glue:
			w += kn.Width
			trail += kn.Width
			shrink += kn.Shrink
			trailShrink += kn.Shrink
			continue
		case *khipu.Discretionary:
			cw, pen = w-trail+kn.PreW, kn.P
		case *khipu.PenaltyKnot:
			if kn.Forced() {
				return i, true, best < 0 && b.wrap > 0 && b.exceeds(w-trail, shrink-trailShrink)
			}
			cw, class, pen = w-trail, kn.Class, kn.P
		}
		if b.wrap == 0 || pen >= params.InfinitePenalty {
			continue
		}
		if b.exceeds(cw, shrink-trailShrink) {
			if best >= 0 {
				return best, false, false
			}
			return i, false, true
		}
		// later candidates win, unless nothing visible is in between;
		// then the stronger class wins, then the lower penalty
		if best < 0 || cw != bestW || class > bestClass || (class == bestClass && pen <= bestP) {
			best, bestW, bestClass, bestP = i, cw, class, pen
		}
	}
	overflow = best < 0 && b.wrap > 0 && b.exceeds(w-trail, shrink-trailShrink)
	return len(b.knots), false, overflow
}

// assemble creates a line from knots [start:end) in logical order and
// reorders its items into visual order.
func (b *breaker) assemble(start, end int) Line {
	l := Line{Direction: glyphing.LeftToRight}
	if b.baseLevel == 1 {
		l.Direction = glyphing.RightToLeft
	}
	items := make([]Item, 0, end-start+1)
	for i := start; i < end; i++ {
		switch kn := b.knots[i].(type) {
		case *khipu.TextBox:
			items = append(items, Item{
				Kind:   TextItem,
				Glyphs: positioned(kn.Glyphs),
				Width:  kn.Width,
				Level:  kn.Level,
				Run:    kn.Run,
				Span:   kn.TextPos,
			})
			l.Height, l.Depth = dimen.Max(l.Height, kn.Height), dimen.Max(l.Depth, kn.Depth)
		case *khipu.Glue:
			items = append(items, Item{
				Kind:    SpaceItem,
				Glyphs:  positioned(kn.Glyphs),
				Width:   kn.Width,
				Level:   kn.Level,
				Run:     kn.Run,
				Span:    kn.TextPos,
				stretch: kn.Stretch,
				shrink:  kn.Shrink,
			})
			l.Height, l.Depth = dimen.Max(l.Height, kn.Height), dimen.Max(l.Depth, kn.Depth)
		}
	}
	if end < len(b.knots) {
		if d, ok := b.knots[end].(*khipu.Discretionary); ok && len(d.Pre) > 0 {
			// the hyphen stands in for the soft hyphen preceding the break
			shy := glyphing.Span{Start: d.At - utf8.RuneLen(segment.SoftHyphen), End: d.At}
			hyphen := positioned(d.Pre)
			for j := range hyphen {
				hyphen[j].ClusterStart, hyphen[j].ClusterEnd = shy.Start, shy.End
			}
			items = append(items, Item{
				Kind:   HyphenItem,
				Glyphs: hyphen,
				Width:  d.PreW,
				Level:  d.Level,
				Run:    d.Run,
				Span:   shy,
			})
			l.Height, l.Depth = dimen.Max(l.Height, d.Height), dimen.Max(l.Depth, d.Depth)
		}
	}
	if len(items) == 0 {
		l.Height, l.Depth = b.p.Height, b.p.Depth
	}
	// trailing whitespace hangs and is reset to the paragraph level (rule L1)
	for i := len(items) - 1; i >= 0 && items[i].Kind == SpaceItem; i-- {
		items[i].Hanging = true
		items[i].Level = b.baseLevel
	}
	levels := make([]uint8, len(items))
	for i := range items {
		if !items[i].Hanging {
			l.Width += items[i].Width
		}
		levels[i] = items[i].Level
		if items[i].Level%2 == 1 {
			reverseClusters(items[i].Glyphs)
		}
	}
	l.Items = make([]Item, len(items))
	for i, j := range segment.Reorder(levels) {
		l.Items[i] = items[j]
	}
	return l
}

func positioned(glyphs []glyphing.ShapedGlyph) []Glyph {
	pg := make([]Glyph, len(glyphs))
	for i, g := range glyphs {
		pg[i].ShapedGlyph = g
	}
	return pg
}

// reverseClusters reverses the order of clusters of glyphs, keeping the
// order of glyphs within a cluster.
func reverseClusters(glyphs []Glyph) {
	for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
		glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
	}
	for i := 0; i < len(glyphs); {
		j := i + 1
		for j < len(glyphs) && glyphs[j].ClusterStart == glyphs[i].ClusterStart {
			j++
		}
		for a, b := i, j-1; a < b; a, b = a+1, b-1 {
			glyphs[a], glyphs[b] = glyphs[b], glyphs[a]
		}
		i = j
	}
}
