/*
Package lines breaks khipus into lines of positioned glyphs.

Breaking is first-fit: a line is filled with knots until the next box would
exceed the wrap width, and is then broken at the latest legal break seen so
far. If two candidates end a line at the same width, a break after whitespace
is preferred over a hyphenation point. If there is no legal break before the
wrap width, the unbreakable material is set on a line of its own, which is
flagged as overflowing.

Every line is reordered into visual order according to the embedding levels
of its items (rule L2 of the Unicode bidi algorithm), and is aligned within
the measure of the paragraph. Justified lines stretch their inter-word glue;
a line without glue is justified by spreading its inter-cluster gaps.
Whitespace at the end of a line hangs: its glyphs are kept, but have no width.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lines

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.frame'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.frame")
}
