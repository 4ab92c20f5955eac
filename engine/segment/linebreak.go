package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/uax"
	uaxsegment "github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
	"github.com/rivo/uniseg"
)

// BreakClass classifies line break opportunities.
type BreakClass int8

// Classes of line break opportunities, ordered by strength.
const (
	BreakConditional BreakClass = iota // hyphenation point or other opportunity
	BreakStrong                        // after whitespace
	BreakMandatory                     // after an explicit line terminator
)

func (c BreakClass) String() string {
	switch c {
	case BreakStrong:
		return "strong"
	case BreakMandatory:
		return "mandatory"
	}
	return "conditional"
}

// SoftHyphen is U+00AD, marking a hyphenation point.
const SoftHyphen = '\u00AD'

// BreakPoint is a legal position to end a line.
type BreakPoint struct {
	Pos    int        // byte position; the line ends before Pos
	Class  BreakClass //
	Hyphen bool       // a hyphen has to be inserted if the line breaks here
}

// BreakCandidates returns the line break opportunities within span of text,
// ordered by position. A break at span.End is reported only if text ends
// with a line terminator there, i.e. if another (empty) line follows.
//
// Opportunities are found by a UAX #14 line wrapper. Breaks are never
// reported inside a grapheme cluster or after a joiner.
func BreakCandidates(text string, span glyphing.Span) []BreakPoint {
	wrap := opportunities(text[span.Start:span.End], span.Start)
	var breaks []BreakPoint
	pos, rest, state := span.Start, text[span.Start:span.End], -1
	for len(rest) > 0 {
		var cluster string
		var boundaries int
		cluster, rest, boundaries, state = uniseg.StepString(rest, state)
		pos += len(cluster)
		last, _ := utf8.DecodeLastRuneInString(cluster)
		if len(rest) == 0 {
			if uniseg.HasTrailingLineBreakInString(cluster) {
				breaks = append(breaks, BreakPoint{Pos: pos, Class: BreakMandatory})
			}
			break
		}
		if boundaries&uniseg.MaskLine == uniseg.LineMustBreak || IsTerminator(last) {
			breaks = append(breaks, BreakPoint{Pos: pos, Class: BreakMandatory})
			continue
		}
		if !wrap[pos] || isJoiner(last) {
			continue
		}
		bp := BreakPoint{Pos: pos, Class: BreakConditional}
		if unicode.IsSpace(last) {
			bp.Class = BreakStrong
		} else if last == SoftHyphen {
			bp.Hyphen = true
		}
		breaks = append(breaks, bp)
	}
	tracer().Debugf("%d break candidates in [%d:%d]", len(breaks), span.Start, span.End)
	return breaks
}

// opportunities runs a UAX #14 line wrapper over text and returns the
// positions (offset by start) of segments ending in a break opportunity.
func opportunities(text string, start int) map[int]bool {
	seg := uaxsegment.NewSegmenter(uax14.NewLineWrap())
	seg.Init(strings.NewReader(text))
	wrap := make(map[int]bool)
	pos := start
	for seg.Next() {
		pos += len(seg.Bytes())
		if p1, _ := seg.Penalties(); p1 < uax.InfinitePenalty {
			wrap[pos] = true
		}
	}
	return wrap
}

func isJoiner(r rune) bool {
	return r == '\u200D' || r == '\u2060' || r == '\uFEFF'
}

// TrimSpace returns the end position of text[start:end] without trailing
// whitespace and line terminators.
func TrimSpace(text string, start, end int) int {
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) && !IsTerminator(r) {
			break
		}
		end -= size
	}
	return end
}
