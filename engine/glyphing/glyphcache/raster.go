package glyphcache

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/ringtext/engine/glyphing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var buffers = sync.Pool{
	New: func() interface{} { return &sfnt.Buffer{} },
}

// Quantize splits a horizontal pen position, given in pixels, into a whole
// pixel position and a subpixel phase out of subpixel divisions.
func Quantize(x float64, subpixel int) (int, uint8) {
	if subpixel <= 1 {
		return int(math.Round(x)), 0
	}
	px := math.Floor(x)
	phase := int(math.Round((x - px) * float64(subpixel)))
	if phase == subpixel {
		px++
		phase = 0
	}
	return int(px), uint8(phase)
}

// Rasterize renders glyph gid of font f into an alpha mask. ppem is the size
// in pixels per em. The glyph outline is shifted right by phase/subpixel of
// a pixel.
func Rasterize(f *font.ScalableFont, gid glyphing.GlyphIndex, ppem fixed.Int26_6,
	phase uint8, subpixel int) (*Entry, error) {
	//
	if f == nil || f.SFNT == nil {
		return nil, core.Error(core.EINVALID, "cannot rasterize glyph without font")
	}
	buf := buffers.Get().(*sfnt.Buffer)
	defer buffers.Put(buf)
	adv, err := f.SFNT.GlyphAdvance(buf, sfnt.GlyphIndex(gid), ppem, xfont.HintingNone)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot read advance of glyph %d of %s", gid, f.Fontname)
	}
	segs, err := f.SFNT.LoadGlyph(buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot load glyph %d of %s", gid, f.Fontname)
	}
	entry := &Entry{Advance: adv, Mask: &image.Alpha{}}
	if len(segs) == 0 {
		return entry, nil
	}
	var dx float32
	if subpixel > 1 {
		dx = float32(phase) / float32(subpixel)
	}
	// Segments have y growing downwards, relative to the baseline.
	bounds := segs.Bounds()
	minX := int(math.Floor(float64(bounds.Min.X)/64 + float64(dx)))
	minY := bounds.Min.Y.Floor()
	maxX := int(math.Ceil(float64(bounds.Max.X)/64 + float64(dx)))
	maxY := bounds.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return entry, nil
	}
	tx, ty := dx-float32(minX), -float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return tx + float32(p.X)/64, ty + float32(p.Y)/64
	}
	rast := vector.NewRasterizer(w, h)
	rast.DrawOp = draw.Src
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			rast.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			rast.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(seg.Args[0])
			x2, y2 := pt(seg.Args[1])
			rast.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(seg.Args[0])
			x2, y2 := pt(seg.Args[1])
			x3, y3 := pt(seg.Args[2])
			rast.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	entry.Mask = image.NewAlpha(image.Rect(0, 0, w, h))
	rast.Draw(entry.Mask, entry.Mask.Bounds(), image.Opaque, image.Point{})
	entry.Origin = image.Pt(minX, minY)
	return entry, nil
}

// Glyph returns the rasterized glyph gid of font f for a pen position x, in
// pixels. It returns the entry together with the whole pixel position the
// entry's origin is relative to.
func (c *Cache) Glyph(f *font.ScalableFont, gid glyphing.GlyphIndex, ppem fixed.Int26_6,
	x float64) (*Entry, int, error) {
	//
	px, phase := Quantize(x, c.subpixel)
	key := Key{FontID: f.ID(), GID: gid, Size: ppem, Phase: phase}
	e, err := c.GetOrFill(key, func(k Key) (*Entry, error) {
		return Rasterize(f, k.GID, k.Size, k.Phase, c.subpixel)
	})
	return e, px, err
}

// Draw composites entry e in color src onto dst, with the pen at (x, y).
func Draw(dst draw.Image, e *Entry, x, y int, src image.Image) {
	if e == nil || e.Mask == nil || e.Mask.Rect.Empty() {
		return
	}
	r := e.Mask.Bounds().Add(image.Pt(x, y).Add(e.Origin))
	draw.DrawMask(dst, r, src, image.Point{}, e.Mask, image.Point{}, draw.Over)
}
