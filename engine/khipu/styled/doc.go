/*
Package styled holds paragraphs of styled text, the input of layout.

A Paragraph is a sequence of runs, each consisting of a piece of text and a
style. The paragraph's text is the concatenation of its runs' texts; byte
positions of shaped glyphs and line breaks refer to this text.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package styled

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.khipu'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.khipu")
}
