package monospace

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax11"
)

type msshape struct {
	em      dimen.Dimen
	context *uax11.Context
}

// Shaper creates a shaper for monospace typesetting.
// An em-dimension may be given which will then be used as the width of a
// single cell. If is is zero, it will be set to 10pt.
//
// If Params carry a font, its size overrides em and glyph IDs are taken
// from it. Code-points missing from the font are not flagged as notdef, as
// monospace output does not depend on glyphs.
func Shaper(em dimen.Dimen) glyphing.Shaper {
	if em == 0 {
		em = 10 * dimen.PT
	}
	grapheme.SetupGraphemeClasses()
	return &msshape{em: em, context: uax11.LatinContext}
}

// Shape creates a glyph sequence from a text.
func (ms *msshape) Shape(text string, span glyphing.Span, buf []glyphing.ShapedGlyph,
	p glyphing.Params) (glyphing.GlyphSequence, error) {
	//
	seq := glyphing.GlyphSequence{Glyphs: buf}
	if span.Start < 0 || span.End > len(text) || span.Start > span.End {
		return seq, core.Error(core.EINVALID, "span [%d:%d] out of range of text", span.Start, span.End)
	}
	if seq.Glyphs == nil {
		seq.Glyphs = make([]glyphing.ShapedGlyph, 0, span.Len())
	}
	em := ms.em
	if p.Font != nil {
		em = p.Font.Size()
	}
	// segmenters are not safe for concurrent use
	graphemes := segment.NewSegmenter(grapheme.NewBreaker(1))
	graphemes.Init(strings.NewReader(text[span.Start:span.End]))
	pos := span.Start
	for graphemes.Next() {
		cluster := graphemes.Bytes()
		codepoint, _ := utf8.DecodeRune(cluster)
		w := uax11.Width(cluster, ms.context)
		if codepoint == '\t' {
			w = 1
		} else if unicode.IsControl(codepoint) || unicode.Is(unicode.Cf, codepoint) {
			w = 0
		}
		g := glyphing.ShapedGlyph{
			XAdvance:     dimen.Dimen(w) * em,
			ClusterStart: pos,
			ClusterEnd:   pos + len(cluster),
			CodePoint:    codepoint,
		}
		if p.Font != nil {
			g.Face = p.Font.ScalableFontParent()
			if gid, ok := g.Face.GlyphIndex(codepoint); ok {
				g.GID = glyphing.GlyphIndex(gid)
			}
		}
		seq.Glyphs = append(seq.Glyphs, g)
		seq.W += g.XAdvance
		pos += len(cluster)
	}
	seq.H = em * 4 / 5
	seq.D = em / 5
	tracer().Debugf("monospace shaped %d clusters, width = %s", len(seq.Glyphs), seq.W)
	return seq, nil
}
