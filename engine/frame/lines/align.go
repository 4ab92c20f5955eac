package lines

import (
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/engine/glyphing"
)

// align positions the items of a line within measure. Justification
// stretches a line only if stretch is set, and shrinks it only if shrink
// is set.
func (l *Line) align(measure dimen.Dimen, a Alignment, stretch, shrink bool) {
	free := measure - l.Width
	extra := make([]dimen.Dimen, len(l.Items)) // per space item
	var gaps, perGap, rem dimen.Dimen
	if a == AlignJustify && (free > 0 && stretch || free < 0 && shrink) {
		if l.distributeGlue(free, extra) {
			free = 0
		} else if free > 0 {
			if gaps = dimen.Dimen(l.gaps()); gaps > 0 {
				perGap, rem = free/gaps, free%gaps
				free = 0
			}
		}
	}
	if free < 0 {
		free = 0
	}
	var offset dimen.Dimen
	rtl := l.Direction == glyphing.RightToLeft
	switch a {
	case AlignCenter:
		offset = free / 2
	case AlignEnd:
		if !rtl {
			offset = free
		}
	default:
		if rtl {
			offset = free
		}
	}
	x := offset
	var gap dimen.Dimen
	for i := range l.Items {
		it := &l.Items[i]
		it.X = x
		if it.Hanging {
			for j := range it.Glyphs {
				it.Glyphs[j].X = x
			}
			it.Width = 0
			continue
		}
		for j := range it.Glyphs {
			it.Glyphs[j].X = x
			x += it.Glyphs[j].XAdvance
			if gap < gaps && endsCluster(it.Glyphs, j) {
				x += perGap
				if gap < rem {
					x += dimen.SP
				}
				gap++
			}
		}
		x += extra[i]
		it.Width = x - it.X
	}
	l.Width = x - offset
	tracer().Debugf("aligned %s line: offset=%.2f width=%.2f", a, offset.Points(), l.Width.Points())
}

// distributeGlue distributes free space over the glue of a line,
// proportionally to its stretchability (free > 0) or shrinkability
// (free < 0). It returns false if the line has no flexible glue.
func (l *Line) distributeGlue(free dimen.Dimen, extra []dimen.Dimen) bool {
	flex := func(it *Item) dimen.Dimen {
		if it.Kind != SpaceItem || it.Hanging {
			return 0
		}
		if free > 0 {
			return it.stretch
		}
		return it.shrink
	}
	var total dimen.Dimen
	last := -1
	for i := range l.Items {
		if f := flex(&l.Items[i]); f > 0 {
			total += f
			last = i
		}
	}
	if total == 0 {
		return false
	}
	remaining := free
	for i := range l.Items {
		if f := flex(&l.Items[i]); f > 0 {
			extra[i] = dimen.Dimen(int64(free) * int64(f) / int64(total))
			remaining -= extra[i]
		}
	}
	extra[last] += remaining
	return true
}

// gaps counts the gaps between visible clusters of a line.
func (l *Line) gaps() int {
	n := 0
	for _, it := range l.Items {
		if it.Hanging {
			continue
		}
		for j := range it.Glyphs {
			if endsCluster(it.Glyphs, j) {
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

func endsCluster(glyphs []Glyph, j int) bool {
	return j+1 == len(glyphs) || glyphs[j+1].ClusterStart != glyphs[j].ClusterStart
}
