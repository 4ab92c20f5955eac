// Package dimen implements dimensions and units.
//
// Dimensions are fixed-point values in scaled big points, i.e., 1/65536 of
// a PDF point (1/72 inch). The shaper returns 26.6 fixed-point values; these
// are converted without loss, as 26.6 is a coarser grid than 16.16.
// Rounding to device pixels is a separate, explicit step.
//
/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package dimen

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/image/math/fixed"
)

// Dimen is a dimension type.
// Values are in scaled big points (different from TeX).
type Dimen int32

// Some pre-defined dimensions
const (
	Zero Dimen = 0
	SP   Dimen = 1       // scaled point = BP / 65536
	BP   Dimen = 65536   // big point (PDF) = 1/72 inch
	PX   Dimen = 65536   // "pixels" at 72 dpi
	PT   Dimen = 65291   // printers point 1/72.27 inch
	MM   Dimen = 185771  // millimeters
	CM   Dimen = 1857710 // centimeters
	IN   Dimen = 4718592 // inch
)

// Infinity is the largest possible dimension
const Infinity = math.MaxInt32

// Stringer implementation.
func (d Dimen) String() string {
	return fmt.Sprintf("%dsp", int32(d))
}

// Points returns a dimension in big (PDF) points.
func (d Dimen) Points() float64 {
	return float64(d) / float64(BP)
}

// FromFixed converts a 26.6 fixed-point value, as used by font rasterizers
// and shapers, to a dimension. The 26.6 value is interpreted as big points.
func FromFixed(f fixed.Int26_6) Dimen {
	return Dimen(int32(f) << 10)
}

// Fixed converts a dimension to a 26.6 fixed-point value, truncating
// precision beyond 1/64 bp.
func (d Dimen) Fixed() fixed.Int26_6 {
	return fixed.Int26_6(int32(d) >> 10)
}

// FromPoints creates a dimension from a floating point value in big points.
func FromPoints(pt float64) Dimen {
	return Dimen(math.Round(pt * float64(BP)))
}

// PixelSize returns the size of a device pixel at a given resolution.
// A resolution of 0 is taken as 72 dpi.
func PixelSize(dpi float64) Dimen {
	if dpi <= 0 {
		dpi = 72
	}
	return Dimen(math.Round(float64(IN) / dpi))
}

// Pixels returns d in device pixels for a given resolution.
func (d Dimen) Pixels(dpi float64) float64 {
	return float64(d) / float64(PixelSize(dpi))
}

// Round rounds d to the nearest multiple of unit. Halves are rounded
// away from zero. A non-positive unit leaves d unchanged.
func (d Dimen) Round(unit Dimen) Dimen {
	if unit <= 0 {
		return d
	}
	q := int64(d) / int64(unit)
	r := int64(d) % int64(unit)
	if r < 0 {
		r = -r
		if 2*r >= int64(unit) {
			q--
		}
	} else if 2*r >= int64(unit) {
		q++
	}
	return Dimen(q * int64(unit))
}

// Point is a point on a page.
type Point struct {
	X, Y Dimen
}

// Origin is origin
var Origin = Point{0, 0}

// Shift a point along a vector.
func (p *Point) Shift(vector Point) *Point {
	p.X += vector.X
	p.Y += vector.Y
	return p
}

// Rect is a rectangle (on a page).
type Rect struct {
	TopL, BotR Point
}

// Width returns the width of a rectangle, i.e. the difference between x-coordinates
// of bottom-right and top-left corner.
func (r Rect) Width() Dimen {
	return r.BotR.X - r.TopL.X
}

// Height returns the height of a rectangle, i.e. the difference between y-coordinates
// of bottom-right and top-left corner.
func (r Rect) Height() Dimen {
	return r.BotR.Y - r.TopL.Y
}

// ---------------------------------------------------------------------------

var dimenPattern = regexp.MustCompile(`^([+\-]?[0-9]+(?:\.[0-9]+)?)(%|[cminpxtcbsp]{2})?$`)

// ParseDimen parses a string to return a dimension. Syntax is CSS Unit.
// If a percentage value is given (`80%`), the second return value will be true.
// A number without unit is taken as scaled points.
func ParseDimen(s string) (Dimen, bool, error) {
	d := dimenPattern.FindStringSubmatch(s)
	if len(d) < 2 {
		return 0, false, errors.New("format error parsing dimension")
	}
	scale := SP
	ispcnt := false
	if len(d) > 2 {
		switch d[2] {
		case "pt", "PT":
			scale = PT
		case "mm", "MM":
			scale = MM
		case "bp", "px", "BP", "PX":
			scale = BP
		case "cm", "CM":
			scale = CM
		case "in", "IN":
			scale = IN
		case "sp", "SP", "":
			scale = SP
		case "%":
			scale, ispcnt = 1, true
		default:
			return 0, false, errors.New("format error parsing dimension")
		}
	}
	n, err := strconv.ParseFloat(d[1], 64)
	if err != nil {
		return 0, false, errors.New("format error parsing dimension")
	}
	v := math.Round(n * float64(scale))
	if v > Infinity || v < -Infinity {
		return 0, false, errors.New("dimension out of range")
	}
	return Dimen(v), ispcnt, nil
}

// ---------------------------------------------------------------------------

// Min returns the smaller of two dimensions.
func Min(a, b Dimen) Dimen {
	if a < b {
		return a
	}
	return b
}

// Max returns the greater of two dimensions.
func Max(a, b Dimen) Dimen {
	if a > b {
		return a
	}
	return b
}
