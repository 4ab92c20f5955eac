/*
Package segment splits paragraph text into directional runs, script runs, and
line break opportunities.

Directional runs are resolved with the Unicode Bidirectional Algorithm
(UAX #9), including explicit embeddings, overrides and isolates. Every
character gets its own embedding level; e.g., numbers following
right-to-left text in a left-to-right paragraph are at level 2, as is
left-to-right text inside a right-to-left embedding. Explicit direction
overrides of styled runs are applied on top of the resolved levels.

Line break opportunities follow UAX #14, as found by the line wrapper of
package uax14. They are restricted to grapheme cluster boundaries (UAX #29)
and classified as mandatory, strong (after whitespace) or conditional (after
hyphens and any other opportunity).

All functions of this package are deterministic and safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package segment

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ringtext.segment'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.segment")
}
