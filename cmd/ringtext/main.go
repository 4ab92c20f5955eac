/*
Ringtext is a command line front end for the ringtext layout engine.

Usage:

    ringtext fonts                      list the families of the font catalog
    ringtext layout [flags] text...     set text into lines and print them
    ringtext render [flags] text...     set text into lines and write a PNG

Configuration is read from a TOML file (flag --config). Tracing output
goes to stderr.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// tracer traces with key 'ringtext.cli'.
func tracer() tracing.Trace {
	return tracing.Select("ringtext.cli")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	initDisplay()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		pterm.Error.Println(core.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func exitCode(err error) int {
	switch core.Code(err) {
	case core.EINVALID:
		return 2
	case core.EMISSING, core.EFONTLOAD:
		return 3
	}
	return 1
}
