package segment

import (
	"unicode/utf8"

	"github.com/npillmayer/ringtext/engine/glyphing"
	"golang.org/x/text/unicode/bidi"
)

// DirectionalRun is a maximal range of text with a single embedding level.
type DirectionalRun struct {
	Span  glyphing.Span // byte range within the paragraph text
	Level uint8         // embedding level; odd levels are right-to-left
}

// Direction returns the writing direction of a run.
func (r DirectionalRun) Direction() glyphing.Direction {
	return LevelDirection(r.Level)
}

// LevelDirection returns the direction of an embedding level.
func LevelDirection(level uint8) glyphing.Direction {
	if level%2 == 1 {
		return glyphing.RightToLeft
	}
	return glyphing.LeftToRight
}

// Override forces a direction onto a range of text, regardless of the
// bidi classes of its characters.
type Override struct {
	Span      glyphing.Span
	Direction glyphing.Direction
}

// BaseDirection returns the direction of the first strong character of text.
// Characters inside of isolates are skipped.
// If there is none, it returns LeftToRight and false.
func BaseDirection(text string) (glyphing.Direction, bool) {
	isolates := 0
	for _, r := range text {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.LRI, bidi.RLI, bidi.FSI:
			isolates++
		case bidi.PDI:
			if isolates > 0 {
				isolates--
			}
		case bidi.L:
			if isolates == 0 {
				return glyphing.LeftToRight, true
			}
		case bidi.R, bidi.AL:
			if isolates == 0 {
				return glyphing.RightToLeft, true
			}
		}
	}
	return glyphing.LeftToRight, false
}

// Segment splits text into directional runs, in logical order.
//
// If base is Neutral, the paragraph direction is taken from the first strong
// character of text. The resolved paragraph direction is returned together
// with the runs. Explicit line terminators get the paragraph's base level,
// and text between terminators is resolved independently, but always with
// the common base direction.
//
// Overrides are applied in order; later ones win.
func Segment(text string, base glyphing.Direction, overrides []Override) ([]DirectionalRun, glyphing.Direction) {
	if base == glyphing.Neutral {
		base, _ = BaseDirection(text)
	}
	if len(text) == 0 {
		return nil, base
	}
	var baseLevel uint8
	if base == glyphing.RightToLeft {
		baseLevel = 1
	}
	levels := make([]uint8, len(text))
	start := 0
	for start < len(text) {
		end, next := nextTerminator(text, start)
		resolveLevels(text[start:end], base, levels[start:end])
		for i := end; i < next; i++ {
			levels[i] = baseLevel
		}
		start = next
	}
	for _, ov := range overrides {
		if ov.Direction == glyphing.Neutral {
			continue
		}
		lvl := baseLevel
		if ov.Direction != base {
			lvl++
		}
		s, e := clamp(ov.Span.Start, len(text)), clamp(ov.Span.End, len(text))
		for i := s; i < e; i++ {
			levels[i] = lvl
		}
	}
	var runs []DirectionalRun
	for i := 0; i < len(text); {
		j := i + 1
		for j < len(text) && levels[j] == levels[i] {
			j++
		}
		runs = append(runs, DirectionalRun{Span: glyphing.Span{Start: i, End: j}, Level: levels[i]})
		i = j
	}
	tracer().Debugf("segmented %d bytes into %d directional runs, base %s", len(text), len(runs), base)
	return runs, base
}

func clamp(pos, max int) int {
	if pos < 0 {
		return 0
	}
	if pos > max {
		return max
	}
	return pos
}

// nextTerminator finds the next paragraph separator at or after start.
// It returns the position of the separator and the position after it.
// CR LF counts as a single separator.
func nextTerminator(text string, start int) (int, int) {
	for i := start; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if IsTerminator(r) {
			if r == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				return i, i + 2
			}
			return i, i + size
		}
		i += size
	}
	return len(text), len(text)
}

// IsTerminator is true for explicit line terminators: LF, CR, NEL, LS and PS.
func IsTerminator(r rune) bool {
	switch r {
	case '\n', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// maxDepth is the maximum explicit embedding level.
const maxDepth = 125

// resolveLevels runs the bidi algorithm on text without terminators and
// stores the level of each byte into levels.
//
// Explicit embeddings, overrides and isolates are resolved first (rules
// X1 to X9). Weak types, neutrals and implicit levels (W1 to W7, N1, N2,
// I1, I2) are then resolved for every level run. Level runs stand in for
// isolating run sequences, i.e. text on either side of an isolate is not
// joined into a single sequence. Paired brackets (N0) are treated as plain
// neutrals. Finally trailing whitespace and segment separators are reset to
// the paragraph level (L1).
func resolveLevels(text string, base glyphing.Direction, levels []uint8) {
	if len(text) == 0 {
		return
	}
	var baseLevel uint8
	if base == glyphing.RightToLeft {
		baseLevel = 1
	}
	n := utf8.RuneCountInString(text)
	offsets := make([]int, 0, n+1) // byte offset of every rune
	orig := make([]bidi.Class, 0, n)
	for i, r := range text {
		p, _ := bidi.LookupRune(r)
		offsets = append(offsets, i)
		orig = append(orig, p.Class())
	}
	offsets = append(offsets, len(text))
	types := make([]bidi.Class, n)
	copy(types, orig)
	lv := make([]uint8, n)
	removed := explicitLevels(types, lv, baseLevel)
	idx := make([]int, 0, n) // characters surviving X9
	for i := range types {
		if !removed[i] {
			idx = append(idx, i)
		}
	}
	for s := 0; s < len(idx); {
		e := s + 1
		for e < len(idx) && lv[idx[e]] == lv[idx[s]] {
			e++
		}
		level := lv[idx[s]]
		prev, next := baseLevel, baseLevel
		if s > 0 {
			prev = lv[idx[s-1]]
		}
		if e < len(idx) {
			next = lv[idx[e]]
		}
		sos, eos := levelClass(max(level, prev)), levelClass(max(level, next))
		resolveRun(types, idx[s:e], level, sos, eos, lv)
		s = e
	}
	for i := range lv {
		if removed[i] {
			if i == 0 {
				lv[i] = baseLevel
			} else {
				lv[i] = lv[i-1]
			}
		}
	}
	trailing := true
	for i := n - 1; i >= 0; i-- {
		switch orig[i] {
		case bidi.S, bidi.B:
			lv[i] = baseLevel
			trailing = true
		case bidi.WS, bidi.BN, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI,
			bidi.LRE, bidi.RLE, bidi.LRO, bidi.RLO, bidi.PDF:
			if trailing {
				lv[i] = baseLevel
			}
		default:
			trailing = false
		}
	}
	for i := range lv {
		for b := offsets[i]; b < offsets[i+1]; b++ {
			levels[b] = lv[i]
		}
	}
}

type embedding struct {
	level    uint8
	override bidi.Class // L, R or ON for no override
	isolate  bool
}

// explicitLevels applies rules X1 to X9. It sets the explicit level of every
// character and returns the characters removed by X9. Overridden characters
// have their class changed in types.
func explicitLevels(types []bidi.Class, lv []uint8, baseLevel uint8) []bool {
	removed := make([]bool, len(types))
	stack := make([]embedding, 1, 8)
	stack[0] = embedding{level: baseLevel, override: bidi.ON}
	var overflowIsolates, overflowEmbeddings, validIsolates int
	for i, t := range types {
		top := stack[len(stack)-1]
		switch t {
		case bidi.RLE, bidi.LRE, bidi.RLO, bidi.LRO:
			removed[i] = true
			lv[i] = top.level
			next := nextEven(top.level)
			if t == bidi.RLE || t == bidi.RLO {
				next = nextOdd(top.level)
			}
			if next <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				emb := embedding{level: next, override: bidi.ON}
				if t == bidi.RLO {
					emb.override = bidi.R
				} else if t == bidi.LRO {
					emb.override = bidi.L
				}
				stack = append(stack, emb)
			} else if overflowIsolates == 0 {
				overflowEmbeddings++
			}
		case bidi.RLI, bidi.LRI, bidi.FSI:
			lv[i] = top.level
			if top.override != bidi.ON {
				types[i] = top.override
			}
			rtl := t == bidi.RLI || (t == bidi.FSI && firstStrongRTL(types, i+1))
			next := nextEven(top.level)
			if rtl {
				next = nextOdd(top.level)
			}
			if next <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				validIsolates++
				stack = append(stack, embedding{level: next, override: bidi.ON, isolate: true})
			} else {
				overflowIsolates++
			}
		case bidi.PDI:
			if overflowIsolates > 0 {
				overflowIsolates--
			} else if validIsolates > 0 {
				overflowEmbeddings = 0
				for !stack[len(stack)-1].isolate {
					stack = stack[:len(stack)-1]
				}
				stack = stack[:len(stack)-1]
				validIsolates--
			}
			top = stack[len(stack)-1]
			lv[i] = top.level
			if top.override != bidi.ON {
				types[i] = top.override
			}
		case bidi.PDF:
			removed[i] = true
			lv[i] = top.level
			if overflowIsolates > 0 {
				break
			}
			if overflowEmbeddings > 0 {
				overflowEmbeddings--
			} else if !top.isolate && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case bidi.BN:
			removed[i] = true
			lv[i] = top.level
		case bidi.B:
			lv[i] = baseLevel
		default:
			lv[i] = top.level
			if top.override != bidi.ON {
				types[i] = top.override
			}
		}
	}
	return removed
}

// firstStrongRTL is true if the first strong character from position start
// up to the matching PDI is right-to-left. Nested isolates are skipped.
func firstStrongRTL(types []bidi.Class, start int) bool {
	depth := 0
	for _, t := range types[start:] {
		switch t {
		case bidi.LRI, bidi.RLI, bidi.FSI:
			depth++
		case bidi.PDI:
			if depth == 0 {
				return false
			}
			depth--
		case bidi.L:
			if depth == 0 {
				return false
			}
		case bidi.R, bidi.AL:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func nextOdd(level uint8) uint8  { return (level + 1) | 1 }
func nextEven(level uint8) uint8 { return (level + 2) &^ 1 }

func levelClass(level uint8) bidi.Class {
	if level%2 == 1 {
		return bidi.R
	}
	return bidi.L
}

func isNeutral(t bidi.Class) bool {
	switch t {
	case bidi.B, bidi.S, bidi.WS, bidi.ON, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
		return true
	}
	return false
}

// strongForNeutrals maps a resolved class to the direction it contributes to
// rule N1. Numbers count as right-to-left.
func strongForNeutrals(t bidi.Class) bidi.Class {
	if t == bidi.L {
		return bidi.L
	}
	return bidi.R
}

// resolveRun resolves weak types, neutrals and implicit levels for the
// characters seq of a level run. sos and eos are the classes at the start and
// end of the run.
func resolveRun(types []bidi.Class, seq []int, level uint8, sos, eos bidi.Class, lv []uint8) {
	at := func(k int) bidi.Class { return types[seq[k]] }
	set := func(k int, t bidi.Class) { types[seq[k]] = t }
	// W1
	for k := range seq {
		if at(k) != bidi.NSM {
			continue
		}
		if k == 0 {
			set(k, sos)
			continue
		}
		switch prev := at(k - 1); prev {
		case bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
			set(k, bidi.ON)
		default:
			set(k, prev)
		}
	}
	// W2, W3
	strong := sos
	for k := range seq {
		switch t := at(k); t {
		case bidi.L, bidi.R:
			strong = t
		case bidi.AL:
			strong = t
			set(k, bidi.R)
		case bidi.EN:
			if strong == bidi.AL {
				set(k, bidi.AN)
			}
		}
	}
	// W4
	for k := 1; k < len(seq)-1; k++ {
		prev, next := at(k-1), at(k+1)
		switch at(k) {
		case bidi.ES:
			if prev == bidi.EN && next == bidi.EN {
				set(k, bidi.EN)
			}
		case bidi.CS:
			if prev == next && (prev == bidi.EN || prev == bidi.AN) {
				set(k, prev)
			}
		}
	}
	// W5
	for k := 0; k < len(seq); {
		if at(k) != bidi.ET {
			k++
			continue
		}
		j := k
		for j < len(seq) && at(j) == bidi.ET {
			j++
		}
		if (k > 0 && at(k-1) == bidi.EN) || (j < len(seq) && at(j) == bidi.EN) {
			for m := k; m < j; m++ {
				set(m, bidi.EN)
			}
		}
		k = j
	}
	// W6, W7
	strong = sos
	for k := range seq {
		switch t := at(k); t {
		case bidi.ES, bidi.ET, bidi.CS:
			set(k, bidi.ON)
		case bidi.L, bidi.R:
			strong = t
		case bidi.EN:
			if strong == bidi.L {
				set(k, bidi.L)
			}
		}
	}
	// N1, N2
	for k := 0; k < len(seq); {
		if !isNeutral(at(k)) {
			k++
			continue
		}
		j := k
		for j < len(seq) && isNeutral(at(j)) {
			j++
		}
		before, after := sos, eos
		if k > 0 {
			before = strongForNeutrals(at(k - 1))
		}
		if j < len(seq) {
			after = strongForNeutrals(at(j))
		}
		dir := levelClass(level)
		if before == after {
			dir = before
		}
		for m := k; m < j; m++ {
			set(m, dir)
		}
		k = j
	}
	// I1, I2
	for k, i := range seq {
		switch t := at(k); {
		case level%2 == 0 && t == bidi.R:
			lv[i] = level + 1
		case level%2 == 0 && (t == bidi.AN || t == bidi.EN):
			lv[i] = level + 2
		case level%2 == 1 && (t == bidi.L || t == bidi.AN || t == bidi.EN):
			lv[i] = level + 1
		default:
			lv[i] = level
		}
	}
}

// Reorder returns the visual order of a sequence of items with embedding
// levels, following rule L2 of the bidi algorithm: from the highest level
// down to the lowest odd level, every maximal sequence of items at that
// level or higher is reversed. The result holds logical indices in visual
// order.
func Reorder(levels []uint8) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	if len(levels) == 0 {
		return order
	}
	var highest, lowestOdd uint8 = 0, 255
	for _, l := range levels {
		if l > highest {
			highest = l
		}
		if l%2 == 1 && l < lowestOdd {
			lowestOdd = l
		}
	}
	for lvl := highest; lvl >= lowestOdd && lvl > 0; lvl-- {
		for i := 0; i < len(order); {
			if levels[order[i]] < lvl {
				i++
				continue
			}
			j := i
			for j < len(order) && levels[order[j]] >= lvl {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}
