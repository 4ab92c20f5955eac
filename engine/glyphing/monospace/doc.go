/*
Package monospace implements a simple shaper for monospace output.

Every grapheme cluster becomes one glyph. Its advance is a multiple of a
fixed cell width, taken from the cluster's East Asian width: wide clusters
occupy two cells, zero-width clusters (e.g., format controls) none.
The shaper needs no font and is therefore useful for terminal output and for
tests which need exact widths.


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package monospace

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.glyphs")
}
