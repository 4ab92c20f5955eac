package styled

import (
	"fmt"
	"strings"
	"time"

	"github.com/npillmayer/ringtext/core"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"golang.org/x/text/unicode/norm"
)

// Paragraph represents a styled paragraph of text. A paragraph is
// read-only after creation and may be shared between goroutines.
type Paragraph struct {
	text   string
	runs   []Run
	starts []int // start position of each run
}

// Run is a simple container type to hold a run of text with equal style.
type Run struct {
	Text  string
	Style Style
}

// NewParagraph creates a paragraph from styled runs. Empty runs are dropped,
// adjacent runs of equal style are not merged.
func NewParagraph(runs ...Run) *Paragraph {
	p := &Paragraph{}
	var b strings.Builder
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		p.starts = append(p.starts, b.Len())
		p.runs = append(p.runs, r)
		b.WriteString(r.Text)
	}
	p.text = b.String()
	tracer().Debugf("paragraph of %d runs, %d bytes", len(p.runs), len(p.text))
	return p
}

// Plain creates a paragraph of a single run.
func Plain(text string, style Style) *Paragraph {
	return NewParagraph(Run{Text: text, Style: style})
}

// Text returns the raw text of a paragraph.
func (p *Paragraph) Text() string {
	return p.text
}

// Len returns the length of a paragraph's text in bytes.
func (p *Paragraph) Len() int {
	return len(p.text)
}

// Runs returns the runs of a paragraph. Clients must not modify the result.
func (p *Paragraph) Runs() []Run {
	return p.runs
}

// Span returns the byte range of run i within the paragraph's text.
func (p *Paragraph) Span(i int) glyphing.Span {
	return glyphing.Span{Start: p.starts[i], End: p.starts[i] + len(p.runs[i].Text)}
}

// ForEachStyleRun applies a function to each run of a paragraph's text,
// together with its position. Iteration stops at the first error.
func (p *Paragraph) ForEachStyleRun(f func(run Run, span glyphing.Span) error) error {
	for i, r := range p.runs {
		if err := f(r, p.Span(i)); err != nil {
			return err
		}
	}
	return nil
}

// StyleAt returns the index of the run containing text position pos.
func (p *Paragraph) StyleAt(pos int) (Style, int, error) {
	if pos < 0 || pos >= len(p.text) {
		return Style{}, -1, core.Error(core.EINVALID, "position %d outside of paragraph", pos)
	}
	i := len(p.starts) - 1
	for i > 0 && p.starts[i] > pos {
		i--
	}
	return p.runs[i].Style, i, nil
}

// Normalize returns a paragraph with every run's text in Unicode
// normalization form NFC. Normalization is done per run, so run boundaries
// are kept.
func (p *Paragraph) Normalize() *Paragraph {
	runs := make([]Run, len(p.runs))
	changed := false
	for i, r := range p.runs {
		runs[i] = r
		if !norm.NFC.IsNormalString(r.Text) {
			runs[i].Text = norm.NFC.String(r.Text)
			changed = true
		}
	}
	if !changed {
		return p
	}
	return NewParagraph(runs...)
}

func (p *Paragraph) String() string {
	var b strings.Builder
	for i, r := range p.runs {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%q%s", r.Text, r.Style)
	}
	return b.String()
}

// --- History ---------------------------------------------------------------

// HistoryEntry is a participant's name together with the time they
// have been present.
type HistoryEntry struct {
	Name     string
	Duration time.Duration
}

// HistoryParagraph creates a paragraph with one line per entry, formatted
// as "name (h:mm)". Lines are separated by newlines; all text uses style.
func HistoryParagraph(entries []HistoryEntry, style Style) *Paragraph {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s (%s)", e.Name, FormatDuration(e.Duration))
	}
	return Plain(strings.Join(lines, "\n"), style)
}

// FormatDuration formats a duration as h:mm, truncated to whole minutes.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
