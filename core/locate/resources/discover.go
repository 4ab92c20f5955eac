package resources

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	gotext "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/schuko"
	"golang.org/x/sync/errgroup"
)

// Discover collects descriptors for all font files available under the
// configuration conf. Every descriptor has exactly one variant. The result
// is sorted by family and path; a path is listed at most once.
//
// Files which cannot be described are skipped silently, as the catalog will
// report them when they are loaded.
func Discover(conf schuko.Configuration) []font.Descriptor {
	var paths []string
	for _, dir := range filepath.SplitList(conf.GetString("font-dirs")) {
		paths = append(paths, scanFontDir(dir)...)
	}
	if conf.GetBool("system-fonts") {
		systemFontsScan.Do(func() {
			systemFonts = findfont.List()
			tracer().Infof("found %d system font files", len(systemFonts))
		})
		paths = append(paths, systemFonts...)
	}
	seen := make(map[string]bool)
	var descs []font.Descriptor
	if conf.IsSet("fontconfig") {
		fcdescs, _ := loadFontConfigList(conf)
		for _, d := range fcdescs {
			if !seen[d.Path] {
				seen[d.Path] = true
				descs = append(descs, d)
			}
		}
	}
	var todo []string
	for _, p := range paths {
		if !seen[p] && isFontFile(p) {
			seen[p] = true
			todo = append(todo, p)
		}
	}
	descs = append(descs, DescribeFiles(todo)...)
	sort.SliceStable(descs, func(i, j int) bool {
		fi, fj := font.NormalizeFamily(descs[i].Family), font.NormalizeFamily(descs[j].Family)
		if fi != fj {
			return fi < fj
		}
		return descs[i].Path < descs[j].Path
	})
	return descs
}

var systemFontsScan sync.Once
var systemFonts []string

// DescribeFiles describes font files in parallel. Files which are not
// readable fonts are dropped from the result; order is preserved.
func DescribeFiles(paths []string) []font.Descriptor {
	results := make([]*font.Descriptor, len(paths))
	var g errgroup.Group
	g.SetLimit(8)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if d, err := DescribeFile(p); err == nil {
				results[i] = &d
			} else {
				tracer().Debugf("skipping %s: %v", p, err)
			}
			return nil
		})
	}
	g.Wait()
	descs := make([]font.Descriptor, 0, len(paths))
	for _, d := range results {
		if d != nil {
			descs = append(descs, *d)
		}
	}
	return descs
}

// DescribeFile reads family, style and weight from a font file's tables.
// If the file carries no family name, it is guessed from the file name.
func DescribeFile(path string) (font.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return font.Descriptor{}, err
	}
	defer f.Close()
	ld, err := ot.NewLoader(f)
	if err != nil {
		return font.Descriptor{}, err
	}
	desc, _ := gotext.Describe(ld, nil)
	style, weight := font.StyleAndWeight(desc.Aspect, filepath.Base(path))
	family := desc.Family
	if family == "" {
		family = familyFromFilename(path)
		style, weight = font.GuessStyleAndWeight(path)
	}
	return font.Descriptor{
		Family:   family,
		Path:     path,
		Variants: []string{font.VariantName(style, weight)},
	}, nil
}

func familyFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if dash := strings.IndexByte(base, '-'); dash > 0 {
		base = base[:dash]
	}
	return base
}

func scanFontDir(dir string) []string {
	var paths []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			tracer().Infof("cannot scan font directory %s: %v", path, err)
			return nil
		}
		if !d.IsDir() && isFontFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func isFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}
