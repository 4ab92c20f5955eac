package harfbuzz

import (
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	ot "github.com/go-text/typesetting/font/opentype"
	hblang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/rivo/uniseg"
	"golang.org/x/text/language"
)

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns a script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	h, err := hblang.ParseScript(s.String())
	if err != nil {
		return hblang.Unknown
	}
	return h
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d glyphing.Direction) di.Direction {
	if d == glyphing.RightToLeft {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// Features4HB converts features to HarfBuzz font features. Invalid tags
// are dropped.
func Features4HB(features []glyphing.Feature) []shaping.FontFeature {
	if len(features) == 0 {
		return nil
	}
	ff := make([]shaping.FontFeature, 0, len(features))
	for _, f := range features {
		if len(f.Tag) != 4 || f.Value < 0 {
			tracer().Errorf("ignoring invalid OpenType feature %q", f.Tag)
			continue
		}
		ff = append(ff, shaping.FontFeature{Tag: ot.MustNewTag(f.Tag), Value: uint32(f.Value)})
	}
	return ff
}

// DetectScript returns the first strong script of runes.
// If there is none, Latin is returned.
func DetectScript(runes []rune) hblang.Script {
	for _, r := range runes {
		if s := hblang.LookupScript(r); s.Strong() && s != hblang.Unknown {
			return s
		}
	}
	return hblang.Latin
}

// --- Shaper ----------------------------------------------------------------

// Shaper is a glyphing.Shaper using HarfBuzz.
type Shaper struct {
	pool sync.Pool
}

var _ glyphing.Shaper = &Shaper{}

// NewShaper creates a HarfBuzz shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() interface{} { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// faceRun is a part of a run shaped with a single font.
type faceRun struct {
	span glyphing.Span
	face *font.ScalableFont
}

// Shape calls the HarfBuzz shaper.
//
// Shape shapes the part span of text, turning its Unicode characters to
// positioned glyphs. It will select a shape plan based on params, including the
// selected font, and the properties of the input text.
// If params.Script is not set, it is detected from the text.
//
// params.Font must be set.
//
// Clients may provide `buf` to avoid allocating memory by Shape. Shape will
// append glyphs to it and wrap it into the GlyphSequence returned.
func (sh *Shaper) Shape(text string, span glyphing.Span, buf []glyphing.ShapedGlyph,
	params glyphing.Params) (glyphing.GlyphSequence, error) {
	//
	seq := glyphing.GlyphSequence{Glyphs: buf}
	if params.Font == nil {
		return seq, core.Error(core.EINVALID, "shaping needs a font")
	}
	if span.Start < 0 || span.End > len(text) || span.Start > span.End {
		return seq, core.Error(core.EINVALID, "span [%d:%d] out of range of text", span.Start, span.End)
	}
	if span.Len() == 0 {
		return seq, nil
	}
	runes, offsets := decode(text)
	runeAt := func(pos int) int {
		return sort.SearchInts(offsets, pos)
	}
	primary := params.Font.ScalableFontParent()
	input := shaping.Input{
		Text:         runes,
		Direction:    Direction4HB(params.Direction),
		Size:         params.Font.Size().Fixed(),
		FontFeatures: Features4HB(params.Features),
	}
	var none language.Script
	if params.Script != none {
		input.Script = Script4HB(params.Script)
	} else {
		input.Script = DetectScript(runes[runeAt(span.Start):runeAt(span.End)])
	}
	if params.Language != language.Und {
		input.Language = Lang4HB(params.Language)
	}
	hb := sh.pool.Get().(*shaping.HarfbuzzShaper)
	defer sh.pool.Put(hb)
	for _, fr := range splitByFace(text, span, primary, params.Fallback) {
		input.RunStart, input.RunEnd = runeAt(fr.span.Start), runeAt(fr.span.End)
		input.Face = fr.face.Face()
		out := hb.Shape(input)
		tracer().Debugf("shaped [%d:%d] with %s: %d glyphs", fr.span.Start, fr.span.End,
			fr.face.Fontname, len(out.Glyphs))
		seq.Glyphs = appendGlyphs(seq.Glyphs, out, fr, runes, offsets,
			params.Direction == glyphing.RightToLeft)
		seq.W += dimen.FromFixed(out.Advance)
		seq.H = dimen.Max(seq.H, dimen.FromFixed(out.LineBounds.Ascent))
		seq.D = dimen.Max(seq.D, dimen.FromFixed(-out.LineBounds.Descent))
	}
	return seq, nil
}

// decode returns the runes of text together with their byte offsets.
// offsets has one more entry than runes, holding len(text).
func decode(text string) ([]rune, []int) {
	n := utf8.RuneCountInString(text)
	runes := make([]rune, 0, n)
	offsets := make([]int, 0, n+1)
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	return runes, append(offsets, len(text))
}

// splitByFace walks the grapheme clusters of span and selects a font for each
// one. The run's font is used wherever it covers a cluster's first code-point.
// Spaces, marks and format controls stay with the font of the preceding
// cluster, as long as it covers them.
func splitByFace(text string, span glyphing.Span, primary *font.ScalableFont,
	fb glyphing.Fallback) []faceRun {
	//
	var runs []faceRun
	cur := primary
	pos, rest, state := span.Start, text[span.Start:span.End], -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		r, _ := utf8.DecodeRuneInString(cluster)
		face := primary
		if sticky(r) && (cur.HasGlyph(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r)) {
			face = cur
		} else if !primary.HasGlyph(r) && fb != nil {
			if f, ok := fb.FallbackFor(r, primary); ok {
				face = f
			}
		}
		if n := len(runs); n > 0 && runs[n-1].face == face {
			runs[n-1].span.End = pos + len(cluster)
		} else {
			runs = append(runs, faceRun{span: glyphing.Span{Start: pos, End: pos + len(cluster)}, face: face})
		}
		cur = face
		pos += len(cluster)
	}
	return runs
}

func sticky(r rune) bool {
	return unicode.IsSpace(r) || unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf, unicode.Cc)
}

// appendGlyphs converts HarfBuzz output to shaped glyphs in logical order.
// HarfBuzz outputs right-to-left runs in visual order.
func appendGlyphs(glyphs []glyphing.ShapedGlyph, out shaping.Output, fr faceRun,
	runes []rune, offsets []int, rtl bool) []glyphing.ShapedGlyph {
	//
	first := len(glyphs)
	n := len(out.Glyphs)
	for i := 0; i < n; i++ {
		g := &out.Glyphs[i]
		if rtl {
			g = &out.Glyphs[n-1-i]
		}
		cp := runes[g.ClusterIndex]
		glyphs = append(glyphs, glyphing.ShapedGlyph{
			GID:          glyphing.GlyphIndex(g.GlyphID),
			Face:         fr.face,
			XAdvance:     dimen.FromFixed(g.XAdvance),
			YAdvance:     dimen.FromFixed(g.YAdvance),
			XOffset:      dimen.FromFixed(g.XOffset),
			YOffset:      dimen.FromFixed(g.YOffset),
			ClusterStart: offsets[g.ClusterIndex],
			CodePoint:    cp,
			Notdef:       g.GlyphID == 0 && !unicode.IsControl(cp),
		})
	}
	added := glyphs[first:]
	end := fr.span.End
	for i := len(added) - 1; i >= 0; i-- {
		if i < len(added)-1 && added[i+1].ClusterStart != added[i].ClusterStart {
			end = added[i+1].ClusterStart
		}
		added[i].ClusterEnd = end
	}
	return glyphs
}
