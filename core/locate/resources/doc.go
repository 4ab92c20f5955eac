/*
Package resources locates font resources installed on a system.

Fonts are discovered from three sources, all of them optional:

   - directories listed in configuration key `font-dirs`,
   - the platform font directories known to go-findfont (`system-fonts`),
   - the output of fontconfig's `fc-list` (key `fontconfig`).

Discovery reads the name and OS/2 tables of each font file, but does not
parse a font completely. Loading is left to the font catalog.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'ringtext.resources'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.resources")
}
