package main

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/engine/frame/lines"
	"github.com/npillmayer/ringtext/engine/glyphing/glyphcache"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/image/math/fixed"
)

const margin = 8 // pixels around the text

func newRenderCmd(a *app) *cobra.Command {
	opts := &paraOpts{}
	var output string
	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Set text into lines and render them to a PNG image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mono {
				return core.Error(core.EINVALID, "monospace output cannot be rendered")
			}
			result, _, err := opts.layout(a, args)
			if err != nil {
				return err
			}
			st, _ := opts.style()
			dpi := float64(a.conf.GetInt("layout.dpi"))
			cache := glyphcache.New(glyphcache.ConfigFrom(a.conf))
			img := render(result, cache, st.Size, dpi)
			if err := writePNG(output, img); err != nil {
				return err
			}
			stats := cache.Stats()
			tracer().Infof("glyph cache: %d entries, %d bytes, hit rate %.2f", cache.Len(), cache.Bytes(),
				stats.HitRate())
			pterm.Success.Printfln("wrote %s (%dx%d)", output, img.Bounds().Dx(), img.Bounds().Dy())
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "ringtext.png", "output file")
	return cmd
}

// render draws paragraphs below each other. Paragraphs are separated by the
// distance of two baselines.
func render(paras [][]lines.Line, cache *glyphcache.Cache, size dimen.Dimen, dpi float64) *image.RGBA {
	var width, height dimen.Dimen
	for _, ls := range paras {
		for _, l := range ls {
			width = dimen.Max(width, l.Width)
		}
		if n := len(ls); n > 0 {
			height += ls[n-1].Baseline + ls[n-1].Depth + size
		}
	}
	w := int(math.Ceil(width.Pixels(dpi))) + 2*margin
	h := int(math.Ceil(height.Pixels(dpi))) + 2*margin
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	ppem := fixed.Int26_6(math.Round(size.Pixels(dpi) * 64))
	ink := image.NewUniform(color.Black)
	var top dimen.Dimen
	for _, ls := range paras {
		for _, l := range ls {
			y := margin + int(math.Round((top + l.Baseline).Pixels(dpi)))
			for _, g := range l.Glyphs() {
				if g.Face == nil {
					continue
				}
				x := margin + (g.X + g.XOffset).Pixels(dpi)
				entry, px, err := cache.Glyph(g.Face, g.GID, ppem, x)
				if err != nil {
					tracer().Errorf("glyph %d of %s: %v", g.GID, g.Face, err)
					continue
				}
				glyphcache.Draw(img, entry, px, y-int(math.Round(g.YOffset.Pixels(dpi))), ink)
			}
		}
		if n := len(ls); n > 0 {
			top += ls[n-1].Baseline + ls[n-1].Depth + size
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return core.WrapError(err, core.EINTERNAL, "cannot encode PNG")
	}
	return f.Close()
}
