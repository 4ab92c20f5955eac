package resources

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/font"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
)

func findFontConfigBinary(conf schuko.Configuration) (path string, err error) {
	path = conf.GetString("fontconfig")
	if path == "" {
		tracer().Infof("fontconfig not configured: key 'fontconfig' should point location of 'fc-list' binary")
		err = errors.New("fontconfig not configured")
	}
	return
}

// cacheFontConfigList runs fc-list once and keeps its output in the
// application's cache folder. With update set, an existing list is replaced.
func cacheFontConfigList(conf schuko.Configuration, update bool) (string, bool) {
	fcpath, err := findFontConfigBinary(conf)
	if err != nil {
		return "", false
	}
	dir, err := CacheDirPath(conf, "fontconfig")
	if err != nil {
		core.UserError(err)
		return "", false
	}
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil && !update {
		return fcListFilename, true
	}
	if !filepath.IsAbs(fcpath) {
		err = core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		defer fontlistFile.Close()
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig output file cannot be created: %s", fcListFilename)
		core.UserError(err)
		os.Remove(fcListFilename)
		return "", false
	}
	return fcListFilename, true
}

func loadFontConfigList(conf schuko.Configuration) ([]font.Descriptor, bool) {
	fclist, ok := cacheFontConfigList(conf, false)
	if !ok {
		return nil, false
	}
	fc, err := os.Open(fclist)
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig font list cannot be opened: %s", fclist)
		core.UserError(err)
		return nil, false
	}
	defer fc.Close()
	descs, err := parseFontConfigList(fc)
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"encountered a problem during reading of fontconfig font list: %s", fclist)
		core.UserError(err)
		return descs, false
	}
	tracer().Infof("loaded fontconfig list with %d fonts", len(descs))
	return descs, true
}

// parseFontConfigList reads lines of fc-list default output, i.e.
//
//    /usr/share/fonts/TTF/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
//
func parseFontConfigList(r io.Reader) ([]font.Descriptor, error) {
	var descs []font.Descriptor
	scanner := bufio.NewScanner(r)
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		fontname := strings.TrimSpace(fields[1])
		if comma := strings.IndexByte(fontname, ','); comma > 0 {
			fontname = fontname[:comma] // first of localized family names
		}
		fontname = strings.TrimPrefix(fontname, ".")
		fontvari := ""
		if len(fields) > 2 {
			fontvari = strings.TrimPrefix(strings.TrimSpace(fields[2]), "style=")
			if comma := strings.IndexByte(fontvari, ','); comma > 0 {
				fontvari = fontvari[:comma]
			}
		}
		descs = append(descs, font.Descriptor{
			Family:   fontname,
			Path:     fontpath,
			Variants: []string{variantFromStyleName(fontvari)},
		})
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return descs, scanner.Err()
}

// variantFromStyleName normalizes fontconfig style names like "Bold Italic"
// or "Book" to variant names.
func variantFromStyleName(s string) string {
	s = strings.ToLower(s)
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		style = xfont.StyleItalic
	}
	switch {
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		weight = xfont.WeightSemiBold
	case strings.Contains(s, "extrabold"), strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		weight = xfont.WeightExtraBold
	case strings.Contains(s, "bold"):
		weight = xfont.WeightBold
	case strings.Contains(s, "medium"):
		weight = xfont.WeightMedium
	case strings.Contains(s, "extralight"), strings.Contains(s, "thin"):
		weight = xfont.WeightExtraLight
	case strings.Contains(s, "light"):
		weight = xfont.WeightLight
	}
	return font.VariantName(style, weight)
}
