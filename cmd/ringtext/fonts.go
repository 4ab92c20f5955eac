package main

import (
	"sort"
	"strings"

	"github.com/npillmayer/ringtext/core/font/fontcatalog"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newFontsCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List the font families of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner, _ := pterm.DefaultSpinner.Start("Loading font catalog")
			catalog := fontcatalog.GlobalCatalog(a.conf)
			if err := catalog.Preload(cmd.Context()); err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success("Font catalog loaded")
			if verbose {
				catalog.LogFontList()
				return printDescriptors(catalog)
			}
			data := pterm.TableData{{"Family"}}
			for _, fam := range catalog.Families() {
				data = append(data, []string{fam})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			printExcluded(catalog)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every face with its file")
	return cmd
}

func printDescriptors(catalog *fontcatalog.Catalog) error {
	data := pterm.TableData{{"Family", "Variant", "File"}}
	for _, d := range catalog.Descriptors() {
		data = append(data, []string{d.Family, strings.Join(d.Variants, ","), d.Path})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	printExcluded(catalog)
	return nil
}

func printExcluded(catalog *fontcatalog.Catalog) {
	excl := catalog.Excluded()
	paths := make([]string, 0, len(excl))
	for path := range excl {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		pterm.Warning.Printfln("excluded %s: %v", path, excl[path])
	}
}
