/*
Package layout sets styled paragraphs into lines of positioned glyphs.

The layout engine drives a paragraph through the stages of the typesetting
pipeline:

    - bidi segmentation into directional runs
    - itemization into runs of a single direction, style and script
    - font resolution through the font catalog, one face per style
    - shaping, with fallback fonts for missing glyphs
    - khipu encoding, using the line break candidates of the text
    - line breaking, visual reordering and alignment
    - vertical stacking of lines and rounding to device pixels

Stages run in order; items of a paragraph are shaped concurrently, as are
independent paragraphs given to LayoutAll.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package layout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.frame'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.frame")
}
