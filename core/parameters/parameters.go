/*
Package parameters holds typesetting registers, i.e. the parameters which
govern line breaking and line assembly.

Registers are organized in groups: a client may open a group, push values
and close the group again, restoring the previous values. This resembles the
grouping of TeX.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"fmt"

	"github.com/npillmayer/ringtext/core/dimen"
)

// TypesettingParameter is a key for a typesetting register.
type TypesettingParameter int

//go:generate stringer -type=TypesettingParameter
const (
	none TypesettingParameter = iota
	P_LANGUAGE
	P_SCRIPT
	P_TEXTDIRECTION
	P_BASELINESKIP
	P_LINESKIP
	P_LINESKIPLIMIT
	P_HYPHENCHAR
	P_HYPHENPENALTY
	P_EXHYPHENPENALTY
	P_SPACEPENALTY
	P_SPACESTRETCH
	P_SPACESHRINK
	P_STOPPER
)

// Penalties are integers in a range of [-InfinitePenalty…InfinitePenalty].
// A penalty of InfinitePenalty inhibits a break, -InfinitePenalty forces one.
const InfinitePenalty = 10000

// ParameterGroup is a group of register values pushed while a group is open.
type ParameterGroup struct {
	params map[TypesettingParameter]interface{}
	level  int
	next   *ParameterGroup
}

// TypesettingRegisters is a set of typesetting parameters, organized in
// nested groups.
type TypesettingRegisters struct {
	base       [P_STOPPER]interface{}
	groups     *ParameterGroup
	grouplevel int
}

// ----------------------------------------------------------------------

// NewTypesettingRegisters creates a register set with default values.
func NewTypesettingRegisters() *TypesettingRegisters {
	regs := &TypesettingRegisters{}
	initParameters(&regs.base)
	return regs
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_LANGUAGE] = "en"            // BCP 47 tag
	p[P_SCRIPT] = ""                // ISO 15924, empty means: detect
	p[P_TEXTDIRECTION] = ""         // "ltr", "rtl" or empty for auto
	p[P_BASELINESKIP] = dimen.Zero  // 0 = derive from font metrics
	p[P_LINESKIP] = dimen.Zero      // extra space between lines
	p[P_LINESKIPLIMIT] = dimen.Zero //
	p[P_HYPHENCHAR] = int('-')      // a rune
	p[P_HYPHENPENALTY] = 50         // penalty at soft hyphens
	p[P_EXHYPHENPENALTY] = 50       // penalty after explicit hyphens
	p[P_SPACEPENALTY] = 0           // penalty at inter-word spaces
	p[P_SPACESTRETCH] = 2           // stretchability of a space, in units of space width / 4
	p[P_SPACESHRINK] = 1            // shrinkability of a space, in units of space width / 4
}

// Begingroup opens a new group.
func (regs *TypesettingRegisters) Begingroup() {
	regs.grouplevel++
}

// Endgroup closes a group, dropping all values pushed inside it.
func (regs *TypesettingRegisters) Endgroup() {
	if regs.grouplevel > 0 {
		if regs.groups != nil && regs.groups.level == regs.grouplevel {
			regs.groups = regs.groups.next
		}
		regs.grouplevel--
	}
}

// Push sets a register value within the current group.
func (regs *TypesettingRegisters) Push(key TypesettingParameter, value interface{}) {
	if key <= none || key >= P_STOPPER {
		panic(fmt.Sprintf("parameter key %d outside range of typesetting parameters", key))
	}
	if regs.grouplevel == 0 {
		regs.base[key] = value
		return
	}
	g := regs.groups
	if g == nil || g.level < regs.grouplevel {
		g = &ParameterGroup{
			params: make(map[TypesettingParameter]interface{}),
			level:  regs.grouplevel,
			next:   regs.groups,
		}
		regs.groups = g
	}
	g.params[key] = value
}

// Get returns the value of a register, searching open groups first.
func (regs *TypesettingRegisters) Get(key TypesettingParameter) interface{} {
	if key <= none || key >= P_STOPPER {
		panic(fmt.Sprintf("parameter key %d outside range of typesetting parameters", key))
	}
	for g := regs.groups; g != nil; g = g.next {
		if value, ok := g.params[key]; ok {
			return value
		}
	}
	return regs.base[key]
}

// S returns a string register.
func (regs *TypesettingRegisters) S(key TypesettingParameter) string {
	s, _ := regs.Get(key).(string)
	return s
}

// N returns a numeric register.
func (regs *TypesettingRegisters) N(key TypesettingParameter) int {
	switch n := regs.Get(key).(type) {
	case int:
		return n
	case dimen.Dimen:
		return int(n)
	}
	return 0
}

// D returns a dimension register.
func (regs *TypesettingRegisters) D(key TypesettingParameter) dimen.Dimen {
	switch d := regs.Get(key).(type) {
	case dimen.Dimen:
		return d
	case int:
		return dimen.Dimen(d)
	}
	return dimen.Zero
}
