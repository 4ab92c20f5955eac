package layout

import (
	"runtime"
	"strings"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/ringtext/core/font/fontcatalog"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/frame/lines"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/ringtext/engine/glyphing/harfbuzz"
	"github.com/npillmayer/ringtext/engine/khipu"
	"github.com/npillmayer/ringtext/engine/khipu/styled"
	"github.com/npillmayer/ringtext/engine/segment"
	"github.com/npillmayer/schuko"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Engine lays out styled paragraphs. An engine may be used concurrently,
// as long as its typesetting registers are not changed during layout.
type Engine struct {
	catalog *fontcatalog.Catalog
	shaper  glyphing.Shaper
	regs    *params.TypesettingRegisters
	dpi     float64 // 0 = no rounding to device pixels
}

// Option configures an engine.
type Option func(*Engine)

// WithShaper sets the shaper of an engine. The default is HarfBuzz.
func WithShaper(sh glyphing.Shaper) Option {
	return func(e *Engine) {
		e.shaper = sh
	}
}

// WithRegisters sets the typesetting registers of an engine.
func WithRegisters(regs *params.TypesettingRegisters) Option {
	return func(e *Engine) {
		e.regs = regs
	}
}

// WithDPI makes an engine round positions to device pixels of a given
// resolution.
func WithDPI(dpi float64) Option {
	return func(e *Engine) {
		e.dpi = dpi
	}
}

// New creates a layout engine using fonts from catalog.
func New(catalog *fontcatalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		shaper:  harfbuzz.NewShaper(),
		regs:    params.NewTypesettingRegisters(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates a layout engine with a new font catalog for
// configuration conf. Key `layout.dpi` sets the device resolution.
func NewFromConfig(conf schuko.Configuration, opts ...Option) *Engine {
	if conf != nil && conf.IsSet("layout.dpi") {
		opts = append([]Option{WithDPI(float64(conf.GetInt("layout.dpi")))}, opts...)
	}
	return New(fontcatalog.NewCatalog(conf), opts...)
}

// Catalog returns the font catalog of an engine.
func (e *Engine) Catalog() *fontcatalog.Catalog {
	return e.catalog
}

// Registers returns the typesetting registers of an engine.
func (e *Engine) Registers() *params.TypesettingRegisters {
	return e.regs
}

// Layout sets a paragraph into lines. Lines are in top to bottom order, and
// their items in visual order. A wrapWidth of 0 breaks lines at explicit
// line terminators only.
//
// Layout fails if a font for a style of the paragraph cannot be resolved.
// Missing glyphs and overflowing lines are not errors.
func (e *Engine) Layout(para *styled.Paragraph, wrapWidth dimen.Dimen, align lines.Alignment) ([]lines.Line, error) {
	if para == nil {
		return nil, core.Error(core.EINVALID, "layout needs a paragraph")
	}
	if wrapWidth < 0 {
		return nil, core.Error(core.EINVALID, "wrap width must not be negative, is %s", wrapWidth)
	}
	text := para.Text()
	cases, err := e.resolveFonts(para)
	if err != nil {
		return nil, err
	}
	druns, base := segment.Segment(text, e.baseDirection(), overrides(para))
	items := itemize(para, druns, e.script())
	tracer().Debugf("paragraph of %d bytes: %d directional runs, %d items", len(text), len(druns), len(items))
	runs, err := e.shapeItems(text, para, items, cases)
	if err != nil {
		return nil, err
	}
	breaks := segment.BreakCandidates(text, glyphing.Span{Start: 0, End: len(text)})
	k, err := khipu.EncodeParagraph(text, runs, breaks, e.regs)
	if err != nil {
		return nil, err
	}
	strut := font.FallbackFont().Metrics(styled.DefaultFontSize)
	if len(cases) > 0 {
		strut = cases[0].Metrics()
	}
	ls := lines.BreakParagraph(k, lines.Params{
		WrapWidth: wrapWidth,
		Align:     align,
		Direction: base,
		TextLen:   len(text),
		Height:    strut.Ascent,
		Depth:     strut.Descent,
	})
	lines.SetBaselines(ls, e.regs.D(params.P_BASELINESKIP), e.regs.D(params.P_LINESKIP),
		e.regs.D(params.P_LINESKIPLIMIT))
	if e.dpi > 0 {
		unit := dimen.PixelSize(e.dpi)
		for i := range ls {
			ls[i].Round(unit)
		}
	}
	tracer().Infof("paragraph set into %d lines", len(ls))
	return ls, nil
}

// LayoutAll sets independent paragraphs concurrently. It returns the lines of
// every paragraph, or the first error encountered.
func (e *Engine) LayoutAll(paras []*styled.Paragraph, wrapWidth dimen.Dimen,
	align lines.Alignment) ([][]lines.Line, error) {
	//
	result := make([][]lines.Line, len(paras))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, para := range paras {
		i, para := i, para
		g.Go(func() error {
			ls, err := e.Layout(para, wrapWidth, align)
			if err != nil {
				return err
			}
			result[i] = ls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) baseDirection() glyphing.Direction {
	switch strings.ToLower(e.regs.S(params.P_TEXTDIRECTION)) {
	case "ltr":
		return glyphing.LeftToRight
	case "rtl":
		return glyphing.RightToLeft
	}
	return glyphing.Neutral
}

// script returns the script set in the registers, if any.
func (e *Engine) script() language.Script {
	s := e.regs.S(params.P_SCRIPT)
	if s == "" {
		return language.Script{}
	}
	scr, err := language.ParseScript(s)
	if err != nil {
		tracer().Errorf("ignoring invalid script register %q: %v", s, err)
		return language.Script{}
	}
	return scr
}

// resolveFonts finds a typecase for every styled run of a paragraph.
func (e *Engine) resolveFonts(para *styled.Paragraph) ([]*font.TypeCase, error) {
	cases := make([]*font.TypeCase, len(para.Runs()))
	for i, run := range para.Runs() {
		if i > 0 && run.Style.SameFont(para.Runs()[i-1].Style) {
			cases[i] = cases[i-1]
			continue
		}
		st := run.Style
		f, err := e.catalog.Resolve(st.Family, st.Style, st.Weight)
		if err != nil {
			return nil, err
		}
		size := st.Size
		if size == 0 {
			size = styled.DefaultFontSize
		}
		if cases[i], err = f.PrepareCase(size); err != nil {
			return nil, err
		}
		tracer().Debugf("style %s resolved to %s", st, f)
	}
	return cases, nil
}

func overrides(para *styled.Paragraph) []segment.Override {
	var ovs []segment.Override
	for i, run := range para.Runs() {
		if run.Style.Direction != glyphing.Neutral {
			ovs = append(ovs, segment.Override{Span: para.Span(i), Direction: run.Style.Direction})
		}
	}
	return ovs
}

// item is a range of text with a single embedding level, style and script.
type item struct {
	span   glyphing.Span
	level  uint8
	style  int // index of the styled run
	script language.Script
}

// itemize splits directional runs at style and script boundaries.
// The script of a style takes precedence over script, which in turn takes
// precedence over detection.
func itemize(para *styled.Paragraph, druns []segment.DirectionalRun, script language.Script) []item {
	var items []item
	var none language.Script
	text := para.Text()
	for _, dr := range druns {
		for i, run := range para.Runs() {
			span := para.Span(i)
			if span.End <= dr.Span.Start || span.Start >= dr.Span.End {
				continue
			}
			span.Start = max(span.Start, dr.Span.Start)
			span.End = min(span.End, dr.Span.End)
			scr := run.Style.Script
			if scr == none {
				scr = script
			}
			if scr != none {
				items = append(items, item{span: span, level: dr.Level, style: i, script: scr})
				continue
			}
			for _, sr := range segment.ScriptRuns(text, span) {
				items = append(items, item{span: sr.Span, level: dr.Level, style: i, script: sr.Script})
			}
		}
	}
	return items
}

// shapeItems shapes all items of a paragraph concurrently.
func (e *Engine) shapeItems(text string, para *styled.Paragraph, items []item,
	cases []*font.TypeCase) ([]khipu.ShapedRun, error) {
	//
	runs := make([]khipu.ShapedRun, len(items))
	var g errgroup.Group
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			run, err := e.shape(text, it, para.Runs()[it.style].Style, cases[it.style])
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (e *Engine) shape(text string, it item, st styled.Style, tc *font.TypeCase) (khipu.ShapedRun, error) {
	lang := st.Language
	if lang == language.Und {
		lang = language.Make(e.regs.S(params.P_LANGUAGE))
	}
	p := glyphing.Params{
		Font:      tc,
		Direction: segment.LevelDirection(it.level),
		Script:    it.script,
		Language:  lang,
		Features:  st.Features,
		Fallback:  e.catalog,
	}
	seq, err := e.shaper.Shape(text, it.span, nil, p)
	if err != nil {
		return khipu.ShapedRun{}, core.WrapError(err, core.Code(err), "cannot shape text [%d:%d]",
			it.span.Start, it.span.End)
	}
	m := tc.Metrics()
	run := khipu.ShapedRun{
		Span:   it.span,
		Level:  it.level,
		Glyphs: seq.Glyphs,
		Height: dimen.Max(seq.H, m.Ascent),
		Depth:  dimen.Max(seq.D, m.Descent),
	}
	if strings.ContainsRune(text[it.span.Start:it.span.End], segment.SoftHyphen) {
		hyphen := string(rune(e.regs.N(params.P_HYPHENCHAR)))
		hseq, err := e.shaper.Shape(hyphen, glyphing.Span{Start: 0, End: len(hyphen)}, nil, p)
		if err != nil {
			return khipu.ShapedRun{}, err
		}
		run.Hyphen = hseq.Glyphs
	}
	return run, nil
}
