/*
Package glyphcache memoizes rasterized glyphs.

Glyphs are keyed by font identity, glyph index, size in pixels per em, and
a subpixel phase, which is the fractional part of a glyph's horizontal pen
position, quantized to a configurable number of divisions.

The cache is bounded by a maximum number of entries and by a budget of bytes.
Entries are evicted in least-recently-used order; they are never removed
otherwise. Concurrent misses for the same key share a single rasterization.

The cache is split into shards, each guarded by its own mutex and holding an
equal part of the budget. Small budgets use fewer shards.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphcache

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.cache'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.cache")
}
