package fontcatalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/ringtext/core/locate/resources"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultFallbackFonts is the fallback chain if configuration key
// `fallback-fonts` is not set.
const DefaultFallbackFonts = "Go,Go Mono"

// face is a catalog entry for a font variant. It is loaded on first use.
type face struct {
	family  string
	variant string
	style   xfont.Style
	weight  xfont.Weight
	path    string
	font    *font.ScalableFont // nil until loaded
	err     error              // set if loading failed; face is excluded
}

type family struct {
	name  string
	faces []*face
}

// Catalog is a type for holding information about installed fonts.
// A catalog is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	index    *treemap.Map // normalized family name -> *family
	paths    map[string]*face
	fallback []string // normalized family names
	loading  singleflight.Group
	coverage sync.Map // coverageKey -> *font.ScalableFont
}

type coverageKey struct {
	r      rune
	style  xfont.Style
	weight xfont.Weight
}

// NewCatalog creates a catalog with the embedded Go fonts and all fonts
// discovered under configuration conf. conf may be nil, in which case
// no discovery is done and the default fallback chain is used.
func NewCatalog(conf schuko.Configuration) *Catalog {
	c := &Catalog{
		index: treemap.NewWithStringComparator(),
		paths: make(map[string]*face),
	}
	chain := DefaultFallbackFonts
	if conf != nil && conf.GetString("fallback-fonts") != "" {
		chain = conf.GetString("fallback-fonts")
	}
	for _, fam := range strings.Split(chain, ",") {
		if fam = strings.TrimSpace(fam); fam != "" {
			c.fallback = append(c.fallback, font.NormalizeFamily(fam))
		}
	}
	for _, f := range font.GoFonts() {
		c.AddFont(f)
	}
	if conf != nil {
		for _, desc := range resources.Discover(conf) {
			c.AddDescriptor(desc)
		}
	}
	tracer().Infof("font catalog knows %d families, fallback chain is %v", c.index.Size(), c.fallback)
	return c
}

// --- Global catalog --------------------------------------------------------

var globalCatalog *Catalog

var globalCatalogCreation sync.Once

// GlobalCatalog is an application-wide catalog. It is created on first call,
// using configuration conf; subsequent calls ignore their argument.
// Tests should create isolated catalogs with NewCatalog.
func GlobalCatalog(conf schuko.Configuration) *Catalog {
	globalCatalogCreation.Do(func() {
		globalCatalog = NewCatalog(conf)
	})
	return globalCatalog
}

// --- Registration ----------------------------------------------------------

// AddFont adds an already loaded font to the catalog. A font with a path
// already known to the catalog is ignored.
func (c *Catalog) AddFont(f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("catalog cannot store null font")
		return
	}
	c.add(&face{
		family:  f.Family,
		variant: font.VariantName(f.Style, f.Weight),
		style:   f.Style,
		weight:  f.Weight,
		path:    f.ID(),
		font:    f,
	})
}

// AddDescriptor adds a not yet loaded font to the catalog, one entry per
// variant.
func (c *Catalog) AddDescriptor(desc font.Descriptor) {
	for _, v := range desc.Variants {
		style, weight := parseVariant(v)
		c.add(&face{
			family:  desc.Family,
			variant: v,
			style:   style,
			weight:  weight,
			path:    desc.Path,
		})
	}
}

// AddFontFile describes a font file and adds it to the catalog.
func (c *Catalog) AddFontFile(path string) error {
	desc, err := resources.DescribeFile(path)
	if err != nil {
		tracer().Errorf("cannot add font file %s: %v", path, err)
		return &font.LoadError{Path: path, Err: err}
	}
	c.AddDescriptor(desc)
	return nil
}

func (c *Catalog) add(fc *face) {
	key := font.NormalizeFamily(fc.family)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.paths[fc.path]; ok {
		return
	}
	c.paths[fc.path] = fc
	var fam *family
	if v, ok := c.index.Get(key); ok {
		fam = v.(*family)
	} else {
		fam = &family{name: fc.family}
		c.index.Put(key, fam)
	}
	fam.faces = append(fam.faces, fc)
	tracer().Debugf("catalog stores font %s|%s as %s", fc.family, fc.variant, key)
}

func parseVariant(v string) (xfont.Style, xfont.Weight) {
	style := xfont.StyleNormal
	if font.MatchStyle(v, xfont.StyleItalic) == font.PerfectConfidence {
		style = xfont.StyleItalic
	} else if font.MatchStyle(v, xfont.StyleOblique) == font.PerfectConfidence {
		style = xfont.StyleOblique
	}
	for w := xfont.WeightThin; w <= xfont.WeightBlack; w++ {
		if font.MatchWeight(v, w) == font.PerfectConfidence {
			return style, w
		}
	}
	return style, xfont.WeightNormal
}

// --- Lookup ----------------------------------------------------------------

// Resolve returns the closest match for a family, style and weight.
// If the family is unknown or none of its faces can be loaded, the first
// loadable face of the fallback chain is returned. Resolve fails with an
// error matching font.ErrFontNotFound only if neither supplies a face.
func (c *Catalog) Resolve(familyName string, style xfont.Style, weight xfont.Weight) (*font.ScalableFont, error) {
	key := font.NormalizeFamily(familyName)
	if f := c.resolveFamily(key, style, weight); f != nil {
		return f, nil
	}
	tracer().Infof("font family %q not available, trying fallback chain", familyName)
	for _, fb := range c.fallback {
		if f := c.resolveFamily(fb, style, weight); f != nil {
			return f, nil
		}
	}
	return nil, font.NotFoundError(familyName)
}

func (c *Catalog) resolveFamily(key string, style xfont.Style, weight xfont.Weight) *font.ScalableFont {
	for _, fc := range c.candidates(key, style, weight) {
		if f, err := c.load(fc); err == nil {
			return f
		}
	}
	return nil
}

// candidates returns the faces of a family which have not been excluded,
// best match first.
func (c *Catalog) candidates(key string, style xfont.Style, weight xfont.Weight) []*face {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.index.Get(key)
	if !ok {
		return nil
	}
	fam := v.(*family)
	faces := make([]*face, 0, len(fam.faces))
	for _, fc := range fam.faces {
		if fc.err == nil {
			faces = append(faces, fc)
		}
	}
	sort.SliceStable(faces, func(i, j int) bool {
		return font.VariantConfidence(faces[i].variant, style, weight) >
			font.VariantConfidence(faces[j].variant, style, weight)
	})
	return faces
}

// load parses a face's font file. Concurrent requests for the same file
// share one load. A failed load excludes the face for the lifetime of c.
func (c *Catalog) load(fc *face) (*font.ScalableFont, error) {
	c.mu.RLock()
	f, err := fc.font, fc.err
	c.mu.RUnlock()
	if f != nil || err != nil {
		return f, err
	}
	v, err, _ := c.loading.Do(fc.path, func() (interface{}, error) {
		c.mu.RLock()
		f, err := fc.font, fc.err
		c.mu.RUnlock()
		if f != nil || err != nil {
			return f, err
		}
		tracer().Infof("loading font %s", fc.path)
		f, err = font.LoadOpenTypeFont(fc.path)
		c.mu.Lock()
		if err != nil {
			fc.err = err
		} else {
			if f.Family == "" {
				f.Family = fc.family
			}
			fc.font = f
		}
		c.mu.Unlock()
		if err != nil {
			tracer().Errorf("excluding font %s|%s: %v", fc.family, fc.variant, err)
			return nil, err
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*font.ScalableFont), nil
}

// FallbackFor returns a font which has a glyph for code point r. If prev
// has one, prev is returned. Otherwise the fallback families are searched
// in order, preferring faces matching prev's style and weight.
// If no font covers r, FallbackFor returns false. This is not an error:
// the shaper will output a notdef glyph.
func (c *Catalog) FallbackFor(r rune, prev *font.ScalableFont) (*font.ScalableFont, bool) {
	if prev != nil && prev.HasGlyph(r) {
		return prev, true
	}
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if prev != nil {
		style, weight = prev.Style, prev.Weight
	}
	key := coverageKey{r: r, style: style, weight: weight}
	if f, ok := c.coverage.Load(key); ok {
		sf, _ := f.(*font.ScalableFont)
		return sf, sf != nil
	}
	var found *font.ScalableFont
	for _, fb := range c.fallback {
		for _, fc := range c.candidates(fb, style, weight) {
			if f, err := c.load(fc); err == nil && f.HasGlyph(r) {
				found = f
				break
			}
		}
		if found != nil {
			break
		}
	}
	if found == nil {
		tracer().Debugf("no fallback font covers %U", r)
	}
	c.coverage.Store(key, found)
	return found, found != nil
}

// Preload loads all faces of the fallback chain in parallel.
// Load errors are not returned, as the faces in question are just excluded.
func (c *Catalog) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, fb := range c.fallback {
		for _, fc := range c.candidates(fb, xfont.StyleNormal, xfont.WeightNormal) {
			fc := fc
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				c.load(fc)
				return nil
			})
		}
	}
	return g.Wait()
}

// --- Inspection ------------------------------------------------------------

// Families returns the display names of all families, sorted by their
// normalized names.
func (c *Catalog) Families() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, c.index.Size())
	it := c.index.Iterator()
	for it.Next() {
		names = append(names, it.Value().(*family).name)
	}
	return names
}

// Descriptors returns a descriptor for every face known to c, sorted like
// Families. Excluded faces are omitted.
func (c *Catalog) Descriptors() []font.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var descs []font.Descriptor
	it := c.index.Iterator()
	for it.Next() {
		for _, fc := range it.Value().(*family).faces {
			if fc.err == nil {
				descs = append(descs, font.Descriptor{
					Family:   fc.family,
					Path:     fc.path,
					Variants: []string{fc.variant},
				})
			}
		}
	}
	return descs
}

// Excluded returns the paths of faces which failed to load, together with
// their load errors.
func (c *Catalog) Excluded() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	excl := make(map[string]error)
	for path, fc := range c.paths {
		if fc.err != nil {
			excl[path] = fc.err
		}
	}
	return excl
}

// LogFontList is a helper function to dump the list of known fonts
// to the trace-file (log-level Info).
func (c *Catalog) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	defer tracer().SetTraceLevel(level)
	tracer().Infof("--- catalog fonts ---")
	for _, d := range c.Descriptors() {
		tracer().Infof("font [%s|%s] = %s", d.Family, d.Variants[0], d.Path)
	}
	tracer().Infof("---------------------")
}
