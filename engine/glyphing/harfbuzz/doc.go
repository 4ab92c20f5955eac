/*
Package harfbuzz implements a shaper based on the Go port of HarfBuzz
contained in github.com/go-text/typesetting.

The shaper splits a run into sub-runs whenever a grapheme cluster has to be
taken from a fallback font. Clusters are never split between fonts.
Shapers hold pools of HarfBuzz buffers and may be used concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package harfbuzz

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.glyphs")
}
