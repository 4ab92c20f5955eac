package fontcatalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
)

func TestResolveStyleAndWeight(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.font")
	defer teardown()
	//
	c := NewCatalog(nil)
	f, err := c.Resolve("Go", xfont.StyleItalic, xfont.WeightBold)
	require.NoError(t, err)
	assert.Equal(t, "Go", f.Family)
	assert.Equal(t, xfont.StyleItalic, f.Style)
	assert.Equal(t, xfont.WeightBold, f.Weight)
	f, err = c.Resolve("go", xfont.StyleNormal, xfont.WeightNormal)
	require.NoError(t, err)
	assert.Equal(t, xfont.StyleNormal, f.Style)
	assert.Equal(t, xfont.WeightNormal, f.Weight)
	f, err = c.Resolve("Go Mono", xfont.StyleItalic, xfont.WeightNormal)
	require.NoError(t, err)
	assert.Equal(t, "Go Mono", f.Family, "closest face of requested family expected")
}

func TestResolveMissingFamily(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.font")
	defer teardown()
	//
	c := NewCatalog(testconfig.Conf{"fallback-fonts": "Nonesuch, Go Mono"})
	f, err := c.Resolve("Helvetica Neue", xfont.StyleNormal, xfont.WeightNormal)
	require.NoError(t, err)
	assert.Equal(t, "Go Mono", f.Family)
	//
	c = NewCatalog(testconfig.Conf{"fallback-fonts": "Nonesuch"})
	_, err = c.Resolve("Helvetica Neue", xfont.StyleNormal, xfont.WeightNormal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, font.ErrFontNotFound))
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestCorruptFontIsExcluded(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.font")
	defer teardown()
	//
	dir := t.TempDir()
	broken := filepath.Join(dir, "Broken-Regular.ttf")
	require.NoError(t, os.WriteFile(broken, []byte("OTTO and then nothing"), 0o644))
	c := NewCatalog(nil)
	c.AddDescriptor(font.Descriptor{Family: "Broken", Path: broken, Variants: []string{"regular"}})
	assert.Contains(t, c.Families(), "Broken")
	f, err := c.Resolve("Broken", xfont.StyleNormal, xfont.WeightNormal)
	require.NoError(t, err, "fallback face expected")
	assert.Equal(t, "Go", f.Family)
	excl := c.Excluded()
	require.Contains(t, excl, broken)
	assert.True(t, errors.Is(excl[broken], font.ErrFontLoad))
	assert.Equal(t, core.EFONTLOAD, core.Code(excl[broken]))
	// once excluded, the face is never selected again
	require.NoError(t, os.WriteFile(broken, gomedium.TTF, 0o644))
	f, err = c.Resolve("Broken", xfont.StyleNormal, xfont.WeightNormal)
	require.NoError(t, err)
	assert.Equal(t, "Go", f.Family)
	for _, d := range c.Descriptors() {
		assert.NotEqual(t, broken, d.Path)
	}
}

func TestLoadOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.font")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "Go-Medium.ttf")
	require.NoError(t, os.WriteFile(path, gomedium.TTF, 0o644))
	c := NewCatalog(nil)
	c.AddDescriptor(font.Descriptor{Family: "Medium Test", Path: path, Variants: []string{"500"}})
	var wg sync.WaitGroup
	results := make([]*font.ScalableFont, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Resolve("Medium Test", xfont.StyleNormal, xfont.WeightMedium)
		}(i)
	}
	wg.Wait()
	require.NotNil(t, results[0])
	assert.Equal(t, path, results[0].Filepath)
	assert.Equal(t, "Go Medium", results[0].Family)
	for _, f := range results[1:] {
		assert.Same(t, results[0], f)
	}
}

func TestFallbackFor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.font")
	defer teardown()
	//
	c := NewCatalog(nil)
	bold, err := c.Resolve("Go", xfont.StyleNormal, xfont.WeightBold)
	require.NoError(t, err)
	f, ok := c.FallbackFor('A', bold)
	assert.True(t, ok)
	assert.Same(t, bold, f, "previous face covers 'A'")
	f, ok = c.FallbackFor('A', nil)
	require.True(t, ok)
	assert.Equal(t, "Go", f.Family)
	f, ok = c.FallbackFor('א', bold) // Hebrew letter alef
	assert.False(t, ok)
	assert.Nil(t, f)
	f, ok = c.FallbackFor('א', nil)
	assert.False(t, ok, "no embedded font covers Hebrew")
}

func TestAddFontFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ringtext.font")
	defer teardown()
	//
	dir := t.TempDir()
	good := filepath.Join(dir, "Go-Medium.ttf")
	require.NoError(t, os.WriteFile(good, gomedium.TTF, 0o644))
	bad := filepath.Join(dir, "Junk.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("junk"), 0o644))
	c := NewCatalog(nil)
	require.NoError(t, c.AddFontFile(good))
	err := c.AddFontFile(bad)
	assert.True(t, errors.Is(err, font.ErrFontLoad))
	f, err := c.Resolve("Go Medium", xfont.StyleNormal, xfont.WeightMedium)
	require.NoError(t, err)
	assert.Equal(t, good, f.Filepath)
}

func TestFamiliesSorted(t *testing.T) {
	c := NewCatalog(nil)
	fams := c.Families()
	assert.Equal(t, []string{"Go", "Go Mono"}, fams)
	require.NoError(t, c.Preload(context.Background()))
	assert.Empty(t, c.Excluded())
}
