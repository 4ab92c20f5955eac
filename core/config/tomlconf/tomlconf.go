/*
Package tomlconf implements a schuko.Configuration read from a TOML file.

Configuration values are held by a koanf adapter. Nested tables are
accessible by dotted keys, i.e.

   [glyphcache]
   entries = 4096

is accessible as key "glyphcache.entries". Keys not present in the file
fall back to the defaults of the application.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package tomlconf

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
)

// Defaults are the configuration values used if neither the configuration
// file nor a call to Set provides a value.
var Defaults = map[string]interface{}{
	"app-key":             "ringtext",
	"fallback-fonts":      "Go,Go Mono",
	"system-fonts":        true,
	"glyphcache.entries":  4096,
	"glyphcache.bytes":    16 << 20,
	"glyphcache.subpixel": 4,
	"layout.dpi":          72,
	"tracing.adapter":     "go",
	"trace.root":          "Error",
}

// Conf is a configuration backed by a TOML document.
type Conf struct {
	*koanfadapter.KConf
}

var _ schuko.Configuration = &Conf{}

// New creates a configuration holding the defaults only.
func New() *Conf {
	c := &Conf{KConf: koanfadapter.New(nil, "", nil)}
	c.InitDefaults()
	return c
}

// Load reads a configuration file. A missing file is not an error if
// optional is set; the defaults are returned instead.
func Load(path string, optional bool) (*Conf, error) {
	c := New()
	f, err := os.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return c, nil
		}
		return c, core.WrapError(err, core.EMISSING, "cannot open configuration file %s", path)
	}
	defer f.Close()
	return c, c.Read(f)
}

// Read merges a TOML document into c.
func (c *Conf) Read(r io.Reader) error {
	var doc map[string]interface{}
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return core.WrapError(err, core.EINVALID, "configuration is not valid TOML")
	}
	if err := c.Koanf().Load(confmap.Provider(doc, ""), nil); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot merge configuration")
	}
	return nil
}

// InitDefaults loads Defaults into c, overwriting previous values.
func (c *Conf) InitDefaults() {
	c.KConf.InitDefaults()
	if err := c.Koanf().Load(confmap.Provider(Defaults, c.Koanf().Delim()), nil); err != nil {
		panic(err) // flat map of plain values
	}
}

// GetString is part of interface schuko.Configuration. Lists are returned
// as comma separated values.
func (c *Conf) GetString(key string) string {
	if _, ok := c.Koanf().Get(key).([]interface{}); ok {
		return strings.Join(c.Koanf().Strings(key), ",")
	}
	return c.KConf.GetString(key)
}

// IsInteractive is part of interface schuko.Configuration. It is always
// false.
func (c *Conf) IsInteractive() bool {
	return false
}
