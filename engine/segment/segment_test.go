package segment

import (
	"testing"

	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestSegmentMixed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "abc שלום xyz"
	runs, base := Segment(text, glyphing.Neutral, nil)
	assert.Equal(t, glyphing.LeftToRight, base)
	require.Len(t, runs, 3)
	assert.Equal(t, "abc ", text[runs[0].Span.Start:runs[0].Span.End])
	assert.Equal(t, "שלום", text[runs[1].Span.Start:runs[1].Span.End])
	assert.Equal(t, " xyz", text[runs[2].Span.Start:runs[2].Span.End])
	assert.Equal(t, glyphing.LeftToRight, runs[0].Direction())
	assert.Equal(t, glyphing.RightToLeft, runs[1].Direction())
	assert.Equal(t, glyphing.LeftToRight, runs[2].Direction())
}

func TestSegmentRTLParagraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "שלום abc"
	runs, base := Segment(text, glyphing.Neutral, nil)
	assert.Equal(t, glyphing.RightToLeft, base)
	require.Len(t, runs, 2)
	assert.Equal(t, uint8(1), runs[0].Level)
	assert.Equal(t, uint8(2), runs[1].Level)
	assert.Equal(t, "abc", text[runs[1].Span.Start:runs[1].Span.End])
	//
	runs, base = Segment(text, glyphing.LeftToRight, nil)
	assert.Equal(t, glyphing.LeftToRight, base)
	require.Len(t, runs, 2)
	assert.Equal(t, uint8(1), runs[0].Level)
	assert.Equal(t, uint8(0), runs[1].Level)
}

func TestSegmentNumbersAfterRTL(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "abc שלום 123 xyz"
	runs, base := Segment(text, glyphing.Neutral, nil)
	assert.Equal(t, glyphing.LeftToRight, base)
	require.Len(t, runs, 4)
	assert.Equal(t, "abc ", text[runs[0].Span.Start:runs[0].Span.End])
	assert.Equal(t, uint8(0), runs[0].Level)
	assert.Equal(t, "שלום ", text[runs[1].Span.Start:runs[1].Span.End])
	assert.Equal(t, uint8(1), runs[1].Level)
	assert.Equal(t, "123", text[runs[2].Span.Start:runs[2].Span.End])
	assert.Equal(t, uint8(2), runs[2].Level, "numbers after RTL text are raised above it")
	assert.Equal(t, " xyz", text[runs[3].Span.Start:runs[3].Span.End])
	assert.Equal(t, uint8(0), runs[3].Level)
	//
	text = "שלום 123"
	runs, base = Segment(text, glyphing.Neutral, nil)
	assert.Equal(t, glyphing.RightToLeft, base)
	require.Len(t, runs, 2)
	assert.Equal(t, "שלום ", text[runs[0].Span.Start:runs[0].Span.End])
	assert.Equal(t, uint8(2), runs[1].Level)
}

func TestSegmentEmbedding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "abc \u202bשלום abc\u202c xyz" // RLE ... PDF
	runs, _ := Segment(text, glyphing.Neutral, nil)
	require.Len(t, runs, 4)
	assert.Equal(t, "abc \u202b", text[runs[0].Span.Start:runs[0].Span.End])
	assert.Equal(t, uint8(0), runs[0].Level)
	assert.Equal(t, "שלום ", text[runs[1].Span.Start:runs[1].Span.End])
	assert.Equal(t, uint8(1), runs[1].Level)
	assert.Equal(t, "abc\u202c", text[runs[2].Span.Start:runs[2].Span.End])
	assert.Equal(t, uint8(2), runs[2].Level, "Latin text stays inside the RTL embedding")
	assert.Equal(t, " xyz", text[runs[3].Span.Start:runs[3].Span.End])
	assert.Equal(t, uint8(0), runs[3].Level)
}

func TestSegmentIsolate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "abc \u2067שלום\u2069 def" // RLI ... PDI
	runs, _ := Segment(text, glyphing.Neutral, nil)
	require.Len(t, runs, 3)
	assert.Equal(t, "abc \u2067", text[runs[0].Span.Start:runs[0].Span.End])
	assert.Equal(t, "שלום", text[runs[1].Span.Start:runs[1].Span.End])
	assert.Equal(t, uint8(1), runs[1].Level)
	assert.Equal(t, "\u2069 def", text[runs[2].Span.Start:runs[2].Span.End])
	assert.Equal(t, uint8(0), runs[2].Level)
	//
	dir, ok := BaseDirection("\u2067שלום\u2069 abc")
	assert.True(t, ok)
	assert.Equal(t, glyphing.LeftToRight, dir, "isolated text does not determine the base direction")
}

func TestSegmentCoversText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	for _, text := range []string{"", "x", "a\nb", "שלום\r\nעולם 123", "1 2 3", "abc אבג 12 def\n"} {
		runs, _ := Segment(text, glyphing.Neutral, nil)
		pos := 0
		for i, r := range runs {
			assert.Equal(t, pos, r.Span.Start, "runs must be contiguous")
			assert.True(t, r.Span.Len() > 0)
			if i > 0 {
				assert.NotEqual(t, runs[i-1].Level, r.Level, "runs must be maximal")
			}
			pos = r.Span.End
		}
		assert.Equal(t, len(text), pos)
	}
}

func TestSegmentOverride(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "abc def ghi"
	runs, _ := Segment(text, glyphing.Neutral, []Override{
		{Span: glyphing.Span{Start: 4, End: 7}, Direction: glyphing.RightToLeft},
	})
	require.Len(t, runs, 3)
	assert.Equal(t, glyphing.Span{Start: 4, End: 7}, runs[1].Span)
	assert.Equal(t, glyphing.RightToLeft, runs[1].Direction())
}

func TestSegmentDeterministic(t *testing.T) {
	text := "Hello עולם, 42 times\nשלום world"
	r1, _ := Segment(text, glyphing.Neutral, nil)
	r2, _ := Segment(text, glyphing.Neutral, nil)
	assert.Equal(t, r1, r2)
}

func TestReorder(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Reorder([]uint8{0, 0, 0}))
	assert.Equal(t, []int{0, 1, 2}, Reorder([]uint8{0, 1, 0}))
	assert.Equal(t, []int{0, 2, 1, 3}, Reorder([]uint8{0, 1, 1, 0}))
	assert.Equal(t, []int{2, 1, 0}, Reorder([]uint8{1, 1, 1}))
	// LTR island within RTL paragraph keeps its inner order
	assert.Equal(t, []int{3, 1, 2, 0}, Reorder([]uint8{1, 2, 2, 1}))
	assert.Empty(t, Reorder(nil))
}

func TestScriptRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "(abc) שלום!"
	runs := ScriptRuns(text, glyphing.Span{Start: 0, End: len(text)})
	require.Len(t, runs, 2)
	assert.Equal(t, language.MustParseScript("Latn"), runs[0].Script)
	assert.Equal(t, "(abc) ", text[runs[0].Span.Start:runs[0].Span.End])
	assert.Equal(t, language.MustParseScript("Hebr"), runs[1].Script)
	assert.Equal(t, len(text), runs[1].Span.End)
	//
	runs = ScriptRuns("123", glyphing.Span{Start: 0, End: 3})
	require.Len(t, runs, 1)
	assert.Equal(t, language.MustParseScript("Latn"), runs[0].Script)
}

func TestBreakCandidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "The quick brown-fox"
	breaks := BreakCandidates(text, glyphing.Span{Start: 0, End: len(text)})
	require.Len(t, breaks, 3)
	assert.Equal(t, BreakPoint{Pos: 4, Class: BreakStrong}, breaks[0])
	assert.Equal(t, BreakPoint{Pos: 10, Class: BreakStrong}, breaks[1])
	assert.Equal(t, BreakPoint{Pos: 16, Class: BreakConditional}, breaks[2])
}

func TestBreakCandidatesMandatory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "ab\ncd\n"
	breaks := BreakCandidates(text, glyphing.Span{Start: 0, End: len(text)})
	require.Len(t, breaks, 2)
	assert.Equal(t, BreakPoint{Pos: 3, Class: BreakMandatory}, breaks[0])
	assert.Equal(t, BreakPoint{Pos: 6, Class: BreakMandatory}, breaks[1])
}

func TestBreakCandidatesClusters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.segment")
	defer teardown()
	//
	text := "hy\u00ADphen e\u0301 x\u200D y"
	breaks := BreakCandidates(text, glyphing.Span{Start: 0, End: len(text)})
	var soft *BreakPoint
	for i, b := range breaks {
		assert.NotEqual(t, 10, b.Pos, "no break inside the combining sequence")
		if b.Hyphen {
			soft = &breaks[i]
		}
		if b.Pos >= 3 {
			assert.NotEqual(t, "\u200D", text[b.Pos-3:b.Pos], "no break after a joiner")
		}
		assert.NotEqual(t, 17, b.Pos, "no break after a joiner")
	}
	require.NotNil(t, soft)
	assert.Equal(t, 4, soft.Pos)
	assert.Equal(t, BreakConditional, soft.Class)
}

func TestTrimSpace(t *testing.T) {
	text := "abc  \n"
	assert.Equal(t, 3, TrimSpace(text, 0, len(text)))
	assert.Equal(t, 1, TrimSpace(text, 1, 1))
}
