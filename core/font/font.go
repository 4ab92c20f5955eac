/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

* A "typecase" is a scaled font, i.e. a font in a certain size.
The name is reminiscend on the wooden boxes of typesetters in the
aera of metal type. An example is "Helvetica regular 11pt".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

A ScalableFont is immutable after loading and may be shared between
goroutines. Shaping needs a go-text face, which carries caches that are
not safe for concurrent use; clients therefore call Face() to get a face
of their own.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'ringtext.font'
func tracer() tracing.Trace {
	return tracing.Select("ringtext.font")
}

// ErrFontNotFound is returned if neither a font nor any of its fallbacks
// could be located.
var ErrFontNotFound = errors.New("font not found")

// ErrFontLoad flags a font file which is present but cannot be parsed.
var ErrFontLoad = errors.New("font cannot be loaded")

// NotFoundError wraps ErrFontNotFound with a user message naming the family.
func NotFoundError(family string) error {
	return core.WrapError(ErrFontNotFound, core.EMISSING, "font %q not found", family)
}

// LoadError is the error type for unusable font files.
// It matches ErrFontLoad with errors.Is.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("[%d] cannot load font %s: %v", core.EFONTLOAD, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFontLoad) succeed.
func (e *LoadError) Is(target error) bool { return target == ErrFontLoad }

// ErrorCode is part of core.AppError
func (e *LoadError) ErrorCode() int { return core.EFONTLOAD }

// UserMessage is part of core.AppError
func (e *LoadError) UserMessage() string {
	return fmt.Sprintf("font file %s cannot be loaded", filepath.Base(e.Path))
}

var _ core.AppError = &LoadError{}

// ---------------------------------------------------------------------------

// ScalableFont is a font variant loaded from a font file or from memory.
type ScalableFont struct {
	Fontname string // full name from the font's name table
	Family   string
	Style    xfont.Style
	Weight   xfont.Weight
	Filepath string // file path, or "internal:…" for embedded fonts
	Binary   []byte // raw data
	SFNT     *sfnt.Font
	otf      *gotext.Font
}

// LoadOpenTypeFont reads and parses a font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, &LoadError{Path: fontfile, Err: err}
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, &LoadError{Path: fontfile, Err: err}
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses a TrueType or OpenType font from memory.
// Font collections are not supported.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	face, err := gotext.ParseTTF(bytes.NewReader(fbytes))
	if err != nil {
		return nil, err
	}
	f.otf = face.Font
	if f.SFNT, err = sfnt.Parse(fbytes); err != nil {
		return nil, err
	}
	desc := f.otf.Describe()
	f.Family = desc.Family
	sub, _ := f.SFNT.Name(nil, sfnt.NameIDSubfamily)
	f.Style, f.Weight = StyleAndWeight(desc.Aspect, sub)
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err != nil || f.Fontname == "" {
		f.Fontname = f.Family
	}
	if f.Family == "" {
		f.Family, _ = f.SFNT.Name(nil, sfnt.NameIDFamily)
	}
	tracer().Debugf("parsed font %q, family %q", f.Fontname, f.Family)
	return f, nil
}

// StyleAndWeight converts a go-text aspect to x/image vocabulary.
// styleName is a subfamily name or a file name; some fonts mark their bold
// variant with weight class 600 and rely on the subfamily name.
func StyleAndWeight(aspect gotext.Aspect, styleName string) (xfont.Style, xfont.Weight) {
	style := xfont.StyleNormal
	if aspect.Style == gotext.StyleItalic {
		style = xfont.StyleItalic
	}
	w := aspect.Weight
	if w == 0 {
		return style, xfont.WeightNormal
	}
	// CSS weights 100…900 map to -3…+5
	n := xfont.Weight(int((w+50)/100) - 4)
	if n < xfont.WeightThin {
		n = xfont.WeightThin
	} else if n > xfont.WeightBlack {
		n = xfont.WeightBlack
	}
	if n == xfont.WeightSemiBold {
		s := strings.ToLower(styleName)
		if strings.Contains(s, "bold") && !strings.Contains(s, "semi") && !strings.Contains(s, "demi") {
			n = xfont.WeightBold
		}
	}
	return style, n
}

// ID identifies a font uniquely within a process. It is used as part of
// cache keys.
func (sf *ScalableFont) ID() string {
	if sf.Filepath != "" {
		return sf.Filepath
	}
	return "internal:" + sf.Fontname
}

func (sf *ScalableFont) String() string {
	return fmt.Sprintf("%s (%s)", sf.Fontname, sf.ID())
}

// Face returns a new go-text face for sf. Faces are not safe for concurrent
// use and should not be shared between goroutines.
func (sf *ScalableFont) Face() *gotext.Face {
	return gotext.NewFace(sf.otf)
}

// UnitsPerEm returns the design units of sf.
func (sf *ScalableFont) UnitsPerEm() int {
	if upem := sf.otf.Upem(); upem > 0 {
		return int(upem)
	}
	return 1000
}

// HasGlyph returns true if sf maps r to a glyph other than notdef.
func (sf *ScalableFont) HasGlyph(r rune) bool {
	gid, ok := sf.otf.NominalGlyph(r)
	return ok && gid != 0
}

// GlyphIndex returns the nominal glyph for r.
func (sf *ScalableFont) GlyphIndex(r rune) (gotext.GID, bool) {
	return sf.otf.NominalGlyph(r)
}

// Metrics holds vertical font metrics at a given size. Descent is positive,
// measured downwards from the baseline.
type Metrics struct {
	Ascent  dimen.Dimen
	Descent dimen.Dimen
	LineGap dimen.Dimen
}

// Height is ascent plus descent plus line gap.
func (m Metrics) Height() dimen.Dimen {
	return m.Ascent + m.Descent + m.LineGap
}

// Metrics returns the font-wide vertical metrics at a given size.
func (sf *ScalableFont) Metrics(size dimen.Dimen) Metrics {
	ext, ok := gotext.NewFace(sf.otf).FontHExtents()
	if !ok {
		return Metrics{Ascent: size * 4 / 5, Descent: size / 5}
	}
	scale := float64(size) / float64(sf.UnitsPerEm())
	m := Metrics{
		Ascent:  dimen.Dimen(float64(ext.Ascender) * scale),
		Descent: dimen.Dimen(float64(-ext.Descender) * scale),
		LineGap: dimen.Dimen(float64(ext.LineGap) * scale),
	}
	if m.Descent < 0 {
		m.Descent = -m.Descent
	}
	return m
}

// --- Typecase --------------------------------------------------------------

// TypeCase is a scalable font at a given size.
type TypeCase struct {
	scalableFontParent *ScalableFont
	size               dimen.Dimen
}

// Font sizes outside this range are rejected by PrepareCase.
const (
	MinFontSize = 1 * dimen.BP
	MaxFontSize = 1000 * dimen.BP
)

// PrepareCase creates a typecase for sf at a given size.
func (sf *ScalableFont) PrepareCase(fontsize dimen.Dimen) (*TypeCase, error) {
	if fontsize < MinFontSize || fontsize > MaxFontSize {
		return nil, core.Error(core.EINVALID, "font size must be %s < size < %s, is %s",
			MinFontSize, MaxFontSize, fontsize)
	}
	return &TypeCase{scalableFontParent: sf, size: fontsize}, nil
}

// ScalableFontParent returns the font a typecase is derived from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// Size returns the size of a typecase.
func (tc *TypeCase) Size() dimen.Dimen {
	return tc.size
}

// PtSize returns the size of a typecase in big points.
func (tc *TypeCase) PtSize() float64 {
	return tc.size.Points()
}

// Metrics is a shortcut for tc.ScalableFontParent().Metrics(tc.Size()).
func (tc *TypeCase) Metrics() Metrics {
	return tc.scalableFontParent.Metrics(tc.size)
}

// --- Fallback fonts --------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	goFontsLoading.Do(loadGoFonts)
	return goFonts[0]
}

// GoFonts returns the embedded Go fonts, regular Go first.
func GoFonts() []*ScalableFont {
	goFontsLoading.Do(loadGoFonts)
	return goFonts
}

var goFontsLoading sync.Once

var goFonts []*ScalableFont

func loadGoFonts() {
	for _, ttf := range [][]byte{
		goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF,
		gomono.TTF, gomonobold.TTF,
	} {
		f, err := ParseOpenTypeFont(ttf)
		if err != nil {
			panic("cannot load embedded Go font") // this cannot happen
		}
		f.Filepath = "internal:" + NormalizeFontname(f.Family, f.Style, f.Weight)
		goFonts = append(goFonts, f)
	}
}
