package khipu

import (
	"testing"

	"github.com/npillmayer/ringtext/core/dimen"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/glyphing/monospace"
	"github.com/npillmayer/ringtext/engine/segment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapeRun(t *testing.T, text string, start, end int, level uint8) ShapedRun {
	span := glyphing.Span{Start: start, End: end}
	seq, err := monospace.Shaper(10*dimen.BP).Shape(text, span, nil, glyphing.Params{})
	require.NoError(t, err)
	return ShapedRun{
		Span:   span,
		Level:  level,
		Glyphs: seq.Glyphs,
		Height: seq.H,
		Depth:  seq.D,
	}
}

func encode(t *testing.T, text string, runs ...ShapedRun) *Khipu {
	if len(runs) == 0 {
		runs = []ShapedRun{shapeRun(t, text, 0, len(text), 0)}
	}
	breaks := segment.BreakCandidates(text, glyphing.Span{Start: 0, End: len(text)})
	k, err := EncodeParagraph(text, runs, breaks, nil)
	require.NoError(t, err)
	return k
}

func knotTypes(k *Khipu) []KnotType {
	var types []KnotType
	for c := NewCursor(k); c.Next(); {
		types = append(types, c.Knot().Type())
	}
	return types
}

func TestEncodeWords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	k := encode(t, "Hello World")
	t.Logf("khipu = %s", k)
	require.Equal(t, []KnotType{KTTextBox, KTGlue, KTPenalty, KTTextBox}, knotTypes(k))
	assert.Equal(t, 50*dimen.BP, k.At(0).W())
	assert.Equal(t, glyphing.Span{Start: 0, End: 5}, k.At(0).Span())
	glue := k.At(1).(*Glue)
	assert.Equal(t, 10*dimen.BP, glue.Width)
	assert.Equal(t, 5*dimen.BP, glue.Stretch)
	assert.Equal(t, 10*dimen.BP/4, glue.Shrink)
	p := k.At(2).(*PenaltyKnot)
	assert.Equal(t, 6, p.At)
	assert.Equal(t, segment.BreakStrong, p.Class)
	assert.Equal(t, 0, p.P)
	assert.Equal(t, glyphing.Span{Start: 6, End: 11}, k.At(3).Span())
}

func TestEncodeMandatoryBreak(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	k := encode(t, "ab\ncd")
	require.Equal(t, []KnotType{KTTextBox, KTPenalty, KTTextBox}, knotTypes(k))
	p := k.At(1).(*PenaltyKnot)
	assert.True(t, p.Forced())
	assert.Equal(t, -params.InfinitePenalty, p.P)
	assert.Equal(t, 3, p.At)
	assert.Equal(t, glyphing.Span{Start: 0, End: 2}, k.At(0).Span())
}

func TestEncodeSoftHyphen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	text := "hy\u00ADphen"
	run := shapeRun(t, text, 0, len(text), 0)
	hyphen := shapeRun(t, "-", 0, 1, 0)
	run.Hyphen = hyphen.Glyphs
	k := encode(t, text, run)
	require.Equal(t, []KnotType{KTTextBox, KTDiscretionary, KTTextBox}, knotTypes(k))
	assert.Equal(t, 20*dimen.BP, k.At(0).W(), "soft hyphen is invisible")
	d := k.At(1).(*Discretionary)
	assert.Equal(t, 4, d.At)
	assert.Equal(t, 50, d.P)
	assert.Equal(t, 10*dimen.BP, d.PreW)
	assert.Equal(t, dimen.Dimen(0), d.W())
	assert.Equal(t, glyphing.Span{Start: 4, End: len(text)}, k.At(2).Span())
}

func TestEncodeExplicitHyphen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	text := "brown-fox"
	regs := params.NewTypesettingRegisters()
	regs.Push(params.P_EXHYPHENPENALTY, 77)
	breaks := segment.BreakCandidates(text, glyphing.Span{Start: 0, End: len(text)})
	k, err := EncodeParagraph(text, []ShapedRun{shapeRun(t, text, 0, len(text), 0)}, breaks, regs)
	require.NoError(t, err)
	require.Equal(t, []KnotType{KTTextBox, KTPenalty, KTTextBox}, knotTypes(k))
	assert.Equal(t, 77, k.At(1).(*PenaltyKnot).P)
	assert.Equal(t, segment.BreakConditional, k.At(1).(*PenaltyKnot).Class)
}

func TestEncodeRunBoundaries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	text := "abcd"
	k := encode(t, text, shapeRun(t, text, 0, 2, 0), shapeRun(t, text, 2, 4, 1))
	require.Equal(t, 2, k.Length())
	assert.Equal(t, uint8(0), k.At(0).(*TextBox).Level)
	assert.Equal(t, uint8(1), k.At(1).(*TextBox).Level)
	assert.Equal(t, 1, k.At(1).(*TextBox).Run)
}

func TestEncodeBreakInsideCluster(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	text := "e\u0301x"
	breaks := []segment.BreakPoint{{Pos: 2, Class: segment.BreakConditional}}
	k, err := EncodeParagraph(text, []ShapedRun{shapeRun(t, text, 0, len(text), 0)}, breaks, nil)
	require.NoError(t, err)
	require.Equal(t, []KnotType{KTTextBox}, knotTypes(k))
	assert.Len(t, k.At(0).(*TextBox).Glyphs, 2)
}

func TestEncodeErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.khipu")
	defer teardown()
	//
	text := "abcd"
	_, err := EncodeParagraph(text, []ShapedRun{shapeRun(t, text, 1, 4, 0)}, nil, nil)
	assert.Error(t, err)
	_, err = EncodeParagraph(text, []ShapedRun{shapeRun(t, text, 0, 3, 0)}, nil, nil)
	assert.Error(t, err)
	breaks := []segment.BreakPoint{{Pos: 3}, {Pos: 1}}
	_, err = EncodeParagraph(text, []ShapedRun{shapeRun(t, text, 0, 4, 0)}, breaks, nil)
	assert.Error(t, err)
}

func TestPenalty(t *testing.T) {
	p := Penalty(-20000, 5)
	assert.True(t, p.Forced())
	assert.Equal(t, -params.InfinitePenalty, p.P)
	p = Penalty(100, 5)
	assert.False(t, p.Forced())
	assert.Equal(t, "[penalty 100 conditional]", p.String())
}

func TestKhipuAppend(t *testing.T) {
	k1 := NewKhipu().AppendKnot(NewTextBox(nil, glyphing.Span{}))
	k2 := NewKhipu().AppendKnot(Penalty(0, 0)).AppendKnot(&Glue{})
	k1.AppendKhipu(k2).AppendKhipu(nil)
	assert.Equal(t, []KnotType{KTTextBox, KTPenalty, KTGlue}, knotTypes(k1))
	c := NewCursor(k1)
	for c.Next() {
	}
	assert.False(t, c.Next())
	assert.Equal(t, 3, c.Position())
}
