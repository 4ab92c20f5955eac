/*
Package fontcatalog manages a catalog of installed fonts.

A catalog indexes font families found by package resources, plus the
embedded Go fonts. Font files are parsed on first use only. A font file
which turns out to be corrupt is excluded from all further selection.

Clients resolve fonts by family, style and weight, and ask for fallback
fonts for code points the font of a run does not cover. The order of
fallback families is configured with key `fallback-fonts`.

No font state is global: applications which want a process-wide catalog
call GlobalCatalog explicitly.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontcatalog

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ringtext.font'
func tracer() tracing.Trace {
	return tracing.Select("ringtext.font")
}
