package font

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
)

// Descriptor describes an installed font family, as found by a font
// discovery mechanism. Variants are names like "regular", "bold",
// "700italic" or "BoldItalic".
type Descriptor struct {
	Family   string
	Path     string
	Variants []string
}

// NormalizeFontname creates a lookup key from a family name, a style and a
// weight.
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = NormalizeFamily(fname)
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightThin, xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold, xfont.WeightBlack:
		fname += "-bold"
	}
	return fname
}

// NormalizeFamily lower-cases a family name and replaces blanks.
// File extensions are stripped.
func NormalizeFamily(fname string) string {
	fname = strings.TrimSpace(fname)
	if ext := path.Ext(fname); ext == ".ttf" || ext == ".otf" {
		fname = fname[:len(fname)-len(ext)]
	}
	fname = strings.ReplaceAll(fname, " ", "_")
	return strings.ToLower(fname)
}

// VariantName returns a variant name for a style and weight, in the
// format used by Descriptor.
func VariantName(style xfont.Style, weight xfont.Weight) string {
	v := ""
	switch {
	case weight == xfont.WeightNormal:
	case weight == xfont.WeightBold:
		v = "bold"
	default:
		v = strconv.Itoa(int(weight)*100 + 400)
	}
	if style == xfont.StyleItalic || style == xfont.StyleOblique {
		v += "italic"
	}
	if v == "" {
		v = "regular"
	}
	return v
}

// GuessStyleAndWeight trys to guess a font's style and weight from the
// font's file name.
func GuessStyleAndWeight(fontfilename string) (xfont.Style, xfont.Weight) {
	fontfilename = path.Base(fontfilename)
	ext := path.Ext(fontfilename)
	fontfilename = strings.ToLower(fontfilename[:len(fontfilename)-len(ext)])
	s := strings.Split(fontfilename, "-")
	if len(s) > 1 {
		switch s[len(s)-1] {
		case "light", "xlight":
			return xfont.StyleNormal, xfont.WeightLight
		case "normal", "medium", "regular", "r":
			return xfont.StyleNormal, xfont.WeightNormal
		case "bold", "b":
			return xfont.StyleNormal, xfont.WeightBold
		case "xbold", "black":
			return xfont.StyleNormal, xfont.WeightExtraBold
		}
	}
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(fontfilename, "italic") {
		style = xfont.StyleItalic
	}
	if strings.Contains(fontfilename, "light") {
		weight = xfont.WeightLight
	}
	if strings.Contains(fontfilename, "bold") {
		weight = xfont.WeightBold
	}
	return style, weight
}

// Matches returns true if a font's filename contains pattern and indicators
// for a given style and weight.
func Matches(fontfilename, pattern string, style xfont.Style, weight xfont.Weight) bool {
	basename := path.Base(fontfilename)
	basename = basename[:len(basename)-len(path.Ext(basename))]
	basename = strings.ToLower(basename)
	if !strings.Contains(basename, strings.ToLower(pattern)) {
		return false
	}
	s, w := GuessStyleAndWeight(basename)
	return s == style && w == weight
}

// MatchConfidence is a type for expressing the confidence level of font matching.
type MatchConfidence int

const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

// ClosestMatch scans a list of font desriptors and returns the closest match
// for a given set of parameters. Pattern is a regular expression matched
// against the lower-cased family name.
// If no variant matches, returns `NoConfidence`.
func ClosestMatch(fdescs []Descriptor, pattern string, style xfont.Style,
	weight xfont.Weight) (match Descriptor, variant string, confidence MatchConfidence) {
	//
	r, err := regexp.Compile(strings.ToLower(pattern))
	if err != nil {
		tracer().Errorf("invalid font name pattern %q", pattern)
		return
	}
	for _, fdesc := range fdescs {
		if !r.MatchString(strings.ToLower(fdesc.Family)) {
			continue
		}
		for _, v := range fdesc.Variants {
			if c := VariantConfidence(v, style, weight); c > confidence {
				confidence, variant, match = c, v, fdesc
			}
		}
	}
	return
}

// VariantConfidence combines MatchStyle and MatchWeight.
func VariantConfidence(variant string, style xfont.Style, weight xfont.Weight) MatchConfidence {
	return (MatchStyle(variant, style) + MatchWeight(variant, weight)) / 2
}

// ---------------------------------------------------------------------------

// MatchStyle trys to match a font-variant to a given style.
func MatchStyle(variantName string, style xfont.Style) MatchConfidence {
	variantName = strings.ToLower(variantName)
	italic := strings.Contains(variantName, "italic")
	oblique := strings.Contains(variantName, "obliq")
	switch style {
	case xfont.StyleNormal:
		if !italic && !oblique {
			return PerfectConfidence
		}
		return NoConfidence
	case xfont.StyleItalic:
		if italic {
			return PerfectConfidence
		}
		if oblique {
			return HighConfidence
		}
		return NoConfidence
	case xfont.StyleOblique:
		if oblique {
			return PerfectConfidence
		}
		if italic {
			return HighConfidence
		}
		return NoConfidence
	}
	return NoConfidence
}

// MatchWeight trys to match a font-variant to a given weight.
// Style designators are ignored.
func MatchWeight(variantName string, weight xfont.Weight) MatchConfidence {
	/* from https://pkg.go.dev/golang.org/x/image/font
	WeightThin       Weight = -3 // CSS font-weight value 100.
	WeightExtraLight Weight = -2 // CSS font-weight value 200.
	WeightLight      Weight = -1 // CSS font-weight value 300.
	WeightNormal     Weight = +0 // CSS font-weight value 400.
	WeightMedium     Weight = +1 // CSS font-weight value 500.
	WeightSemiBold   Weight = +2 // CSS font-weight value 600.
	WeightBold       Weight = +3 // CSS font-weight value 700.
	WeightExtraBold  Weight = +4 // CSS font-weight value 800.
	WeightBlack      Weight = +5 // CSS font-weight value 900.
	*/
	v := strings.ToLower(variantName)
	v = strings.ReplaceAll(v, "italic", "")
	v = strings.ReplaceAll(v, "oblique", "")
	v = strings.TrimSpace(strings.Trim(v, "-_ "))
	if v == "" {
		v = "regular"
	}
	if strconv.Itoa(int(weight)*100+400) == v {
		return PerfectConfidence
	}
	switch v {
	case "regular", "400", "normal", "text", "book":
		switch weight {
		case xfont.WeightNormal, xfont.WeightMedium:
			return PerfectConfidence
		case xfont.WeightThin, xfont.WeightExtraLight, xfont.WeightLight:
			return LowConfidence
		}
		return NoConfidence
	case "100", "200", "300", "light", "thin":
		switch weight {
		case xfont.WeightThin, xfont.WeightExtraLight, xfont.WeightLight:
			return PerfectConfidence
		case xfont.WeightNormal, xfont.WeightMedium:
			return LowConfidence
		}
		return NoConfidence
	case "500", "medium":
		switch weight {
		case xfont.WeightMedium:
			return PerfectConfidence
		case xfont.WeightSemiBold:
			return HighConfidence
		case xfont.WeightNormal, xfont.WeightBold:
			return LowConfidence
		}
		return NoConfidence
	case "bold", "700":
		switch weight {
		case xfont.WeightBold:
			return PerfectConfidence
		case xfont.WeightSemiBold, xfont.WeightExtraBold:
			return HighConfidence
		}
		return NoConfidence
	case "extrabold", "semibold", "black", "600", "800", "900":
		switch weight {
		case xfont.WeightSemiBold, xfont.WeightExtraBold, xfont.WeightBlack:
			return HighConfidence
		case xfont.WeightBold:
			return LowConfidence
		}
		return NoConfidence
	}
	return NoConfidence
}
