package monospace

import (
	"testing"

	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonospaceShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.glyphs")
	defer teardown()
	//
	shaper := Shaper(10 * dimen.BP)
	text := "Hello, world!"
	seq, err := shaper.Shape(text, glyphing.Span{Start: 0, End: len(text)}, nil, glyphing.Params{})
	require.NoError(t, err)
	if len(seq.Glyphs) != 13 {
		t.Errorf("expected 13 glyphs, have %d", len(seq.Glyphs))
	}
	assert.Equal(t, 130*dimen.BP, seq.W)
	assert.Equal(t, 8*dimen.BP, seq.H)
	assert.Equal(t, 2*dimen.BP, seq.D)
}

func TestMonospaceClusters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.glyphs")
	defer teardown()
	//
	shaper := Shaper(10 * dimen.BP)
	text := "ae\u0301世!" // 'a', e + combining acute, CJK ideograph, '!'
	seq, err := shaper.Shape(text, glyphing.Span{Start: 0, End: len(text)}, nil, glyphing.Params{})
	require.NoError(t, err)
	require.Len(t, seq.Glyphs, 4)
	assert.Equal(t, 1, seq.Glyphs[1].ClusterStart)
	assert.Equal(t, 4, seq.Glyphs[1].ClusterEnd, "combining sequence is one cluster")
	assert.Equal(t, 20*dimen.BP, seq.Glyphs[2].XAdvance, "wide character occupies two cells")
	assert.Equal(t, len(text), seq.Glyphs[3].ClusterEnd)
	assert.Equal(t, 50*dimen.BP, seq.W)
}

func TestMonospaceSpan(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.glyphs")
	defer teardown()
	//
	shaper := Shaper(0)
	text := "abc def"
	seq, err := shaper.Shape(text, glyphing.Span{Start: 4, End: 7}, nil, glyphing.Params{})
	require.NoError(t, err)
	require.Len(t, seq.Glyphs, 3)
	assert.Equal(t, 4, seq.Glyphs[0].ClusterStart)
	assert.Equal(t, 3*10*dimen.PT, seq.W)
	_, err = shaper.Shape(text, glyphing.Span{Start: 4, End: 8}, nil, glyphing.Params{})
	assert.Error(t, err)
}
