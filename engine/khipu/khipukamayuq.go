package khipu

import (
	"sort"
	"unicode"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/segment"
)

// ShapedRun is a run of shaped glyphs with a single embedding level and style.
type ShapedRun struct {
	Span   glyphing.Span          // range of paragraph text
	Level  uint8                  // bidi embedding level
	Glyphs []glyphing.ShapedGlyph // glyphs in logical order
	Height dimen.Dimen            // ascent of the run's font
	Depth  dimen.Dimen            // descent of the run's font
	Hyphen []glyphing.ShapedGlyph // glyphs to insert at hyphenation points
}

type typEnv struct { // typesetting environment
	text   string
	regs   *params.TypesettingRegisters
	runs   []ShapedRun
	khipu  *Khipu
	box    *TextBox
	glue   *Glue
	breaks []segment.BreakPoint
	next   int // next break to encode
	last   int // index of the run of the latest cluster
}

// EncodeParagraph transforms shaped runs of a paragraph text into a khipu.
// Runs must be in logical order and cover text without gaps. breaks are the
// break opportunities of text, ordered by position; a break falling inside a
// shaped cluster is dropped.
//
// Glyphs of whitespace become glue, glyphs of line terminators are dropped,
// all other glyphs are collected into text boxes. A box never spans two runs.
//
// If regs is nil, default registers are used.
func EncodeParagraph(text string, runs []ShapedRun, breaks []segment.BreakPoint,
	regs *params.TypesettingRegisters) (*Khipu, error) {
	//
	if regs == nil {
		regs = params.NewTypesettingRegisters()
	}
	if !sort.SliceIsSorted(breaks, func(i, j int) bool { return breaks[i].Pos < breaks[j].Pos }) {
		return nil, core.Error(core.EINVALID, "break points are not ordered")
	}
	pos := 0
	for r, run := range runs {
		if run.Span.Start != pos || run.Span.End < run.Span.Start {
			return nil, core.Error(core.EINVALID, "shaped run %d starts at %d, expected %d", r, run.Span.Start, pos)
		}
		pos = run.Span.End
	}
	if pos != len(text) {
		return nil, core.Error(core.EINVALID, "shaped runs end at %d, text at %d", pos, len(text))
	}
	env := &typEnv{text: text, regs: regs, runs: runs, khipu: NewKhipu(), breaks: breaks}
	for r := range runs {
		tracer().Debugf("--- encoding run %d [%d:%d]", r, runs[r].Span.Start, runs[r].Span.End)
		env.encodeRun(r)
	}
	env.encodeBreaks(len(text))
	tracer().Debugf("resulting khipu = %s", env.khipu)
	return env.khipu, nil
}

func (env *typEnv) encodeRun(r int) {
	run := &env.runs[r]
	glyphs := run.Glyphs
	for i := 0; i < len(glyphs); {
		j := i + 1
		for j < len(glyphs) && glyphs[j].ClusterStart == glyphs[i].ClusterStart {
			j++
		}
		cluster := glyphs[i:j]
		span := glyphing.Span{Start: cluster[0].ClusterStart, End: cluster[0].ClusterEnd}
		env.encodeBreaks(span.Start)
		switch cp := cluster[0].CodePoint; {
		case segment.IsTerminator(cp):
			env.flush()
		case isGlue(cp):
			env.encodeSpace(cluster, span, r)
		default:
			env.encodeText(cluster, span, r)
		}
		env.last = r
		i = j
	}
	env.flush()
}

// isGlue is true for breakable whitespace. No-break spaces are set as text.
func isGlue(r rune) bool {
	return unicode.IsSpace(r) && r != '\u00A0' && r != '\u2007' && r != '\u202F'
}

// encodeBreaks appends penalties for all breaks up to pos. Breaks before pos
// are inside a cluster and are dropped.
func (env *typEnv) encodeBreaks(pos int) {
	for env.next < len(env.breaks) && env.breaks[env.next].Pos <= pos {
		bp := env.breaks[env.next]
		env.next++
		if bp.Pos < pos {
			tracer().Debugf("dropping break at %d inside of a cluster", bp.Pos)
			continue
		}
		env.flush()
		env.khipu.AppendKnot(env.penalty(bp))
	}
}

func (env *typEnv) penalty(bp segment.BreakPoint) Knot {
	switch bp.Class {
	case segment.BreakMandatory:
		return Penalty(-params.InfinitePenalty, bp.Pos)
	case segment.BreakStrong:
		p := Penalty(env.regs.N(params.P_SPACEPENALTY), bp.Pos)
		p.Class = segment.BreakStrong
		return p
	}
	if bp.Hyphen {
		d := &Discretionary{
			PenaltyKnot: *Penalty(env.regs.N(params.P_HYPHENPENALTY), bp.Pos),
			Run:         env.last,
		}
		if env.last < len(env.runs) {
			run := &env.runs[env.last]
			d.Pre = run.Hyphen
			d.Height, d.Depth, d.Level = run.Height, run.Depth, run.Level
			for _, g := range d.Pre {
				d.PreW += g.XAdvance
			}
		}
		return d
	}
	p := env.regs.N(params.P_SPACEPENALTY)
	if bp.Pos > 0 && env.text[bp.Pos-1] == '-' {
		p = env.regs.N(params.P_EXHYPHENPENALTY)
	}
	return Penalty(p, bp.Pos)
}

func (env *typEnv) encodeSpace(cluster []glyphing.ShapedGlyph, span glyphing.Span, r int) {
	if env.box != nil {
		env.flush()
	}
	if env.glue == nil {
		run := &env.runs[r]
		env.glue = &Glue{
			Height:  run.Height,
			Depth:   run.Depth,
			Level:   run.Level,
			Run:     r,
			TextPos: glyphing.Span{Start: span.Start, End: span.Start},
		}
	}
	g := env.glue
	g.Glyphs = append(g.Glyphs, cluster...)
	for _, gl := range cluster {
		g.Width += gl.XAdvance
	}
	g.TextPos.End = span.End
	g.Stretch = g.Width * dimen.Dimen(env.regs.N(params.P_SPACESTRETCH)) / 4
	g.Shrink = g.Width * dimen.Dimen(env.regs.N(params.P_SPACESHRINK)) / 4
}

func (env *typEnv) encodeText(cluster []glyphing.ShapedGlyph, span glyphing.Span, r int) {
	if env.glue != nil {
		env.flush()
	}
	if env.box == nil {
		run := &env.runs[r]
		env.box = &TextBox{
			Height:  run.Height,
			Depth:   run.Depth,
			Level:   run.Level,
			Run:     r,
			TextPos: glyphing.Span{Start: span.Start, End: span.Start},
		}
	}
	b := env.box
	for _, g := range cluster {
		if g.CodePoint == segment.SoftHyphen { // invisible unless broken
			g.XAdvance, g.Notdef = 0, false
		}
		b.Glyphs = append(b.Glyphs, g)
		b.Width += g.XAdvance
	}
	b.TextPos.End = span.End
}

// flush closes the current box or glue.
func (env *typEnv) flush() {
	if env.box != nil {
		env.khipu.AppendKnot(env.box)
		env.box = nil
	}
	if env.glue != nil {
		env.khipu.AppendKnot(env.glue)
		env.glue = nil
	}
}
