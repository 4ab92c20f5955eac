package layout

import (
	"errors"
	"testing"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/ringtext/core/font/fontcatalog"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/frame/lines"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/glyphing/monospace"
	"github.com/npillmayer/ringtext/engine/khipu/styled"
	"github.com/npillmayer/ringtext/engine/segment"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestHelloWorld(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	ls, err := engine.Layout(styled.Plain("Hello, world!", styled.DefaultStyle()), 0, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	glyphs := ls[0].Glyphs()
	assert.Len(t, glyphs, 13)
	assert.Equal(t, 13, ls[0].Clusters())
	var advance dimen.Dimen
	for _, g := range glyphs {
		assert.False(t, g.Notdef)
		advance += g.XAdvance
	}
	assert.True(t, advance > 0)
	assert.Equal(t, advance, ls[0].Width)
	assert.Equal(t, ls[0].Height, ls[0].Baseline)
	for i := 1; i < len(glyphs); i++ {
		assert.True(t, glyphs[i].X > glyphs[i-1].X, "glyphs should advance to the right")
	}
}

func TestEmbeddedRTL(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	text := "abc שלום xyz"
	ls, err := engine.Layout(styled.Plain(text, styled.DefaultStyle()), 0, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	var clusters []int
	for _, g := range ls[0].Glyphs() {
		clusters = append(clusters, g.ClusterStart)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 10, 8, 6, 4, 12, 13, 14, 15}, clusters)
	assert.Equal(t, glyphing.LeftToRight, ls[0].Direction)
	var rtl int
	for _, it := range ls[0].Items {
		if it.Direction() == glyphing.RightToLeft {
			rtl++
		}
	}
	assert.Equal(t, 1, rtl, "one right-to-left item expected")
}

func TestNumbersAfterRTL(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	text := "abc שלום 123 xyz"
	ls, err := engine.Layout(styled.Plain(text, styled.DefaultStyle()), 0, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	var clusters []int
	for _, g := range ls[0].Glyphs() {
		clusters = append(clusters, g.ClusterStart)
	}
	// visually: "abc 123 םולש xyz"
	assert.Equal(t, []int{0, 1, 2, 3, 13, 14, 15, 12, 10, 8, 6, 4, 16, 17, 18, 19}, clusters)
}

func TestScriptRegister(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	para := styled.Plain("abc שלום", styled.DefaultStyle())
	druns, _ := segment.Segment(para.Text(), glyphing.Neutral, nil)
	engine := New(fontcatalog.NewCatalog(nil))
	var scripts []language.Script
	for _, it := range itemize(para, druns, engine.script()) {
		scripts = append(scripts, it.script)
	}
	assert.Equal(t, []language.Script{language.MustParseScript("Latn"), language.MustParseScript("Hebr")}, scripts)
	//
	regs := params.NewTypesettingRegisters()
	regs.Push(params.P_SCRIPT, "Cyrl")
	engine = New(fontcatalog.NewCatalog(nil), WithRegisters(regs))
	for _, it := range itemize(para, druns, engine.script()) {
		assert.Equal(t, language.MustParseScript("Cyrl"), it.script)
	}
	ls, err := engine.Layout(para, 0, lines.AlignStart)
	require.NoError(t, err)
	assert.Len(t, ls, 1)
	//
	regs.Push(params.P_SCRIPT, "no script")
	assert.Equal(t, language.Script{}, engine.script())
}

func TestBreakAtWhitespace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil), WithShaper(monospace.Shaper(10*dimen.BP)))
	text := "The quick brown fox jumps over the lazy dog"
	st := styled.DefaultStyle().WithSize(10 * dimen.BP)
	wrap := 100 * dimen.BP
	ls, err := engine.Layout(styled.Plain(text, st), wrap, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 5)
	widths := []dimen.Dimen{90 * dimen.BP, 90 * dimen.BP, 100 * dimen.BP, 80 * dimen.BP, 30 * dimen.BP}
	for i, l := range ls {
		assert.False(t, l.Overflow)
		assert.Equal(t, widths[i], l.Width, "width of line %d", i)
		assert.True(t, l.Width <= wrap)
		if i < len(ls)-1 {
			assert.Equal(t, byte(' '), text[l.Span.End-1], "line %d should break after a space", i)
			assert.Equal(t, ls[i+1].Span.Start, l.Span.End)
		}
	}
	assert.Equal(t, len(text), ls[4].Span.End)
	for i := 1; i < len(ls); i++ {
		assert.True(t, ls[i].Baseline > ls[i-1].Baseline)
	}
}

func TestNarrowWrapWithHarfBuzz(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	text := "The quick brown fox jumps over the lazy dog"
	wrap := 80 * dimen.BP
	ls, err := engine.Layout(styled.Plain(text, styled.DefaultStyle()), wrap, lines.AlignStart)
	require.NoError(t, err)
	require.True(t, len(ls) > 1)
	for i, l := range ls {
		assert.True(t, l.Width <= wrap, "line %d exceeds wrap width: %s", i, l.String())
		if i < len(ls)-1 {
			assert.Equal(t, byte(' '), text[l.Span.End-1])
		}
	}
}

func TestExplicitTerminators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	text := "first\nsecond\u2028third"
	ls, err := engine.Layout(styled.Plain(text, styled.DefaultStyle()), 0, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 3)
	assert.True(t, ls[0].Forced)
	assert.True(t, ls[1].Forced)
	assert.False(t, ls[2].Forced)
	assert.Equal(t, "first\n", text[ls[0].Span.Start:ls[0].Span.End])
	assert.Equal(t, "second\u2028", text[ls[1].Span.Start:ls[1].Span.End])
	assert.Equal(t, 5, ls[0].Clusters(), "terminator should have no glyph")
}

func TestEmptyParagraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	ls, err := engine.Layout(styled.Plain("", styled.DefaultStyle()), 100*dimen.BP, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Empty(t, ls[0].Items)
	assert.True(t, ls[0].Height > 0, "empty line should have strut height")
}

func TestMissingGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	ls, err := engine.Layout(styled.Plain("a\U0010FFFDb", styled.DefaultStyle()), 0, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	glyphs := ls[0].Glyphs()
	require.Len(t, glyphs, 3)
	assert.False(t, glyphs[0].Notdef)
	assert.True(t, glyphs[1].Notdef, "placeholder glyph expected for unsupported code point")
	assert.Equal(t, 1, glyphs[1].ClusterStart)
	assert.False(t, glyphs[2].Notdef)
}

func TestFontNotFound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	catalog := fontcatalog.NewCatalog(testconfig.Conf{"fallback-fonts": "Nonesuch"})
	engine := New(catalog)
	st := styled.DefaultStyle()
	st.Family = "Helvetica Neue"
	_, err := engine.Layout(styled.Plain("Hello", st), 0, lines.AlignStart)
	require.Error(t, err)
	assert.True(t, errors.Is(err, font.ErrFontNotFound))
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestInvalidArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	_, err := engine.Layout(nil, 0, lines.AlignStart)
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = engine.Layout(styled.Plain("x", styled.DefaultStyle()), -dimen.BP, lines.AlignStart)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestDeterminism(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil))
	para := styled.NewParagraph(
		styled.Run{Text: "Mixed ", Style: styled.DefaultStyle()},
		styled.Run{Text: "bold שלום ", Style: styled.DefaultStyle().Bold()},
		styled.Run{Text: "and italic text", Style: styled.DefaultStyle().Italic()},
	)
	first, err := engine.Layout(para, 90*dimen.BP, lines.AlignJustify)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Layout(para, 90*dimen.BP, lines.AlignJustify)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRightToLeftParagraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	regs := params.NewTypesettingRegisters()
	regs.Push(params.P_TEXTDIRECTION, "rtl")
	engine := New(fontcatalog.NewCatalog(nil), WithRegisters(regs),
		WithShaper(monospace.Shaper(10*dimen.BP)))
	st := styled.DefaultStyle().WithSize(10 * dimen.BP)
	ls, err := engine.Layout(styled.Plain("abc", st), 100*dimen.BP, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, glyphing.RightToLeft, ls[0].Direction)
	// start alignment is flush right for right-to-left paragraphs
	glyphs := ls[0].Glyphs()
	require.Len(t, glyphs, 3)
	assert.Equal(t, 70*dimen.BP, glyphs[0].X)
	assert.Equal(t, 0, glyphs[0].ClusterStart, "Latin text keeps its order")
}

func TestDirectionOverride(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil), WithShaper(monospace.Shaper(10*dimen.BP)))
	st := styled.DefaultStyle().WithSize(10 * dimen.BP)
	para := styled.NewParagraph(
		styled.Run{Text: "ab ", Style: st},
		styled.Run{Text: "cde", Style: st.Override(glyphing.RightToLeft)},
	)
	ls, err := engine.Layout(para, 0, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	var clusters []int
	for _, g := range ls[0].Glyphs() {
		clusters = append(clusters, g.ClusterStart)
	}
	assert.Equal(t, []int{0, 1, 2, 5, 4, 3}, clusters)
}

func TestPixelRounding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil), WithDPI(96))
	ls, err := engine.Layout(styled.Plain("Rounded glyph positions", styled.DefaultStyle()),
		120*dimen.BP, lines.AlignCenter)
	require.NoError(t, err)
	unit := dimen.PixelSize(96)
	for _, l := range ls {
		for _, g := range l.Glyphs() {
			assert.Zero(t, int64(g.X)%int64(unit), "glyph at %s is not on a pixel boundary", g.X)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := NewFromConfig(testconfig.Conf{"layout.dpi": 144})
	assert.Equal(t, 144.0, engine.dpi)
	assert.NotNil(t, engine.Catalog())
	assert.NotNil(t, engine.Registers())
}

func TestLayoutAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.frame")
	defer teardown()
	//
	engine := New(fontcatalog.NewCatalog(nil), WithShaper(monospace.Shaper(10*dimen.BP)))
	st := styled.DefaultStyle().WithSize(10 * dimen.BP)
	paras := []*styled.Paragraph{
		styled.Plain("one", st),
		styled.Plain("two words", st),
		styled.Plain("three words here", st),
	}
	result, err := engine.LayoutAll(paras, 60*dimen.BP, lines.AlignStart)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Len(t, result[0], 1)
	assert.Len(t, result[1], 2)
	assert.Len(t, result[2], 3)
	//
	bad := styled.DefaultStyle()
	bad.Family = "Nonesuch"
	engine = New(fontcatalog.NewCatalog(testconfig.Conf{"fallback-fonts": "Nonesuch"}))
	_, err = engine.LayoutAll(append(paras, styled.Plain("x", bad)), 60*dimen.BP, lines.AlignStart)
	assert.Error(t, err)
}
