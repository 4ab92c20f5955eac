package main

import (
	"strings"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/config/tomlconf"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/spf13/cobra"
)

// app holds state shared by all sub-commands.
type app struct {
	configPath string
	traceLevel string
	conf       *tomlconf.Conf
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ringtext",
		Short:         "Ringtext sets styled text into lines of glyphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags().Changed("config"))
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "ringtext.toml", "configuration file")
	root.PersistentFlags().StringVar(&a.traceLevel, "trace", "", "trace level [Debug|Info|Error]")
	root.AddCommand(newFontsCmd(a))
	root.AddCommand(newLayoutCmd(a))
	root.AddCommand(newRenderCmd(a))
	return root
}

// setup loads the configuration and configures tracing. The default
// configuration file is optional, an explicitly given one is not.
func (a *app) setup(explicit bool) error {
	conf, err := tomlconf.Load(a.configPath, !explicit)
	if err != nil {
		return err
	}
	if a.traceLevel != "" {
		if !strings.EqualFold(tracing.TraceLevelFromString(a.traceLevel).String(), a.traceLevel) {
			return core.Error(core.EINVALID, "unknown trace level %q", a.traceLevel)
		}
		conf.Set("trace.root", a.traceLevel)
		for _, key := range traceKeys {
			conf.Set("trace."+key, a.traceLevel)
		}
	}
	a.conf = conf
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot configure tracing")
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Infof("configuration %s loaded", a.configPath)
	return nil
}

var traceKeys = []string{
	"ringtext.cli",
	"ringtext.font",
	"ringtext.resources",
	"ringtext.glyphs",
	"ringtext.segment",
	"ringtext.khipu",
	"ringtext.frame",
	"ringtext.cache",
}
