package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/core/dimen"
	params "github.com/npillmayer/ringtext/core/parameters"
	"github.com/npillmayer/ringtext/engine/frame/layout"
	"github.com/npillmayer/ringtext/engine/frame/lines"
	"github.com/npillmayer/ringtext/engine/glyphing/monospace"
	"github.com/npillmayer/ringtext/engine/khipu/styled"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// paraOpts holds the flags describing paragraphs and their layout.
type paraOpts struct {
	file      string // read paragraphs from a file, separated by blank lines
	family    string
	size      string
	bold      bool
	italic    bool
	lang      string
	direction string // ltr, rtl or empty
	width     string // wrap width, 0 = unconstrained
	align     string
	mono      bool // use the monospace shaper
	history   bool // arguments are name=duration pairs
}

func (o *paraOpts) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&o.file, "file", "f", "", "read paragraphs from file")
	fs.StringVar(&o.family, "family", "Go", "font family")
	fs.StringVar(&o.size, "size", "12bp", "font size")
	fs.BoolVar(&o.bold, "bold", false, "bold weight")
	fs.BoolVar(&o.italic, "italic", false, "italic style")
	fs.StringVar(&o.lang, "lang", "", "BCP 47 language tag")
	fs.StringVar(&o.direction, "dir", "", "paragraph direction [ltr|rtl]")
	fs.StringVarP(&o.width, "width", "w", "0", "wrap width, 0 for no wrapping")
	fs.StringVarP(&o.align, "align", "a", "start", "alignment [start|center|end|justify]")
	fs.BoolVar(&o.mono, "mono", false, "use the monospace shaper")
	fs.BoolVar(&o.history, "history", false, "arguments are name=duration pairs, set as a history list")
}

func (o *paraOpts) style() (styled.Style, error) {
	st := styled.DefaultStyle()
	st.Family = o.family
	sz, pcnt, err := dimen.ParseDimen(o.size)
	if err != nil || pcnt || sz <= 0 {
		return st, core.Error(core.EINVALID, "invalid font size %q", o.size)
	}
	st.Size = sz
	if o.bold {
		st = st.Bold()
	}
	if o.italic {
		st = st.Italic()
	}
	if o.lang != "" {
		tag, err := language.Parse(o.lang)
		if err != nil {
			return st, core.WrapError(err, core.EINVALID, "invalid language tag %q", o.lang)
		}
		st.Language = tag
	}
	return st, nil
}

func (o *paraOpts) paragraphs(args []string) ([]*styled.Paragraph, error) {
	st, err := o.style()
	if err != nil {
		return nil, err
	}
	if o.history {
		p, err := historyParagraph(args, st)
		if err != nil {
			return nil, err
		}
		return []*styled.Paragraph{p}, nil
	}
	var texts []string
	if o.file != "" {
		b, err := os.ReadFile(o.file)
		if err != nil {
			return nil, core.WrapError(err, core.EMISSING, "cannot read %s", o.file)
		}
		for _, t := range strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n\n") {
			if t = strings.TrimSpace(t); t != "" {
				texts = append(texts, t)
			}
		}
	} else {
		if len(args) == 0 {
			return nil, core.Error(core.EINVALID, "no text given")
		}
		texts = append(texts, strings.Join(args, " "))
	}
	paras := make([]*styled.Paragraph, len(texts))
	for i, t := range texts {
		paras[i] = styled.Plain(t, st).Normalize()
	}
	return paras, nil
}

// historyParagraph creates a paragraph from arguments like "alice=1h20m".
func historyParagraph(args []string, st styled.Style) (*styled.Paragraph, error) {
	if len(args) == 0 {
		return nil, core.Error(core.EINVALID, "no history entries given")
	}
	entries := make([]styled.HistoryEntry, len(args))
	for i, arg := range args {
		name, dur, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, core.Error(core.EINVALID, "history entry %q is not of form name=duration", arg)
		}
		d, err := time.ParseDuration(dur)
		if err != nil {
			return nil, core.WrapError(err, core.EINVALID, "invalid duration in history entry %q", arg)
		}
		entries[i] = styled.HistoryEntry{Name: name, Duration: d}
	}
	return styled.HistoryParagraph(entries, st), nil
}

// engine creates a layout engine and returns it together with the wrap width
// and alignment.
func (o *paraOpts) engine(a *app, st styled.Style) (*layout.Engine, dimen.Dimen, lines.Alignment, error) {
	wrap, pcnt, err := dimen.ParseDimen(o.width)
	if err != nil || pcnt || wrap < 0 {
		return nil, 0, 0, core.Error(core.EINVALID, "invalid wrap width %q", o.width)
	}
	align, err := lines.ParseAlignment(o.align)
	if err != nil {
		return nil, 0, 0, err
	}
	regs := params.NewTypesettingRegisters()
	switch strings.ToLower(o.direction) {
	case "", "ltr", "rtl":
		regs.Push(params.P_TEXTDIRECTION, strings.ToLower(o.direction))
	default:
		return nil, 0, 0, core.Error(core.EINVALID, "invalid direction %q", o.direction)
	}
	opts := []layout.Option{layout.WithRegisters(regs)}
	if o.mono {
		opts = append(opts, layout.WithShaper(monospace.Shaper(st.Size)))
	}
	return layout.NewFromConfig(a.conf, opts...), wrap, align, nil
}

func (o *paraOpts) layout(a *app, args []string) ([][]lines.Line, []*styled.Paragraph, error) {
	paras, err := o.paragraphs(args)
	if err != nil {
		return nil, nil, err
	}
	st, _ := o.style()
	engine, wrap, align, err := o.engine(a, st)
	if err != nil {
		return nil, nil, err
	}
	result, err := engine.LayoutAll(paras, wrap, align)
	return result, paras, err
}

func newLayoutCmd(a *app) *cobra.Command {
	opts := &paraOpts{}
	cmd := &cobra.Command{
		Use:   "layout [text...]",
		Short: "Set text into lines and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, paras, err := opts.layout(a, args)
			if err != nil {
				return err
			}
			for i, ls := range result {
				if len(result) > 1 {
					pterm.DefaultSection.Printfln("Paragraph %d", i+1)
				}
				if err := printLines(paras[i].Text(), ls); err != nil {
					return err
				}
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func printLines(text string, ls []lines.Line) error {
	data := pterm.TableData{{"#", "Text", "Width", "Baseline", "Glyphs", "Notes"}}
	for i, l := range ls {
		var notes []string
		if l.Overflow {
			notes = append(notes, "overflow")
		}
		if l.Forced {
			notes = append(notes, "forced")
		}
		for _, g := range l.Glyphs() {
			if g.Notdef {
				notes = append(notes, "notdef")
				break
			}
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%q", text[l.Span.Start:l.Span.End]),
			fmt.Sprintf("%.2fbp", l.Width.Points()),
			fmt.Sprintf("%.2fbp", l.Baseline.Points()),
			fmt.Sprintf("%d", len(l.Glyphs())),
			strings.Join(notes, ","),
		})
		tracer().Debugf("%s", l.String())
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
