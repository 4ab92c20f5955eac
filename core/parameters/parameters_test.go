package parameters

import (
	"testing"

	"github.com/npillmayer/ringtext/core/dimen"
	"github.com/stretchr/testify/assert"
)

func TestRegisterDefaults(t *testing.T) {
	regs := NewTypesettingRegisters()
	assert.Equal(t, "en", regs.S(P_LANGUAGE))
	assert.Equal(t, 50, regs.N(P_HYPHENPENALTY))
	assert.Equal(t, dimen.Zero, regs.D(P_LINESKIP))
}

func TestRegisterGroups(t *testing.T) {
	regs := NewTypesettingRegisters()
	regs.Begingroup()
	regs.Push(P_HYPHENPENALTY, 500)
	regs.Begingroup()
	regs.Push(P_LINESKIP, 2*dimen.BP)
	assert.Equal(t, 500, regs.N(P_HYPHENPENALTY))
	assert.Equal(t, 2*dimen.BP, regs.D(P_LINESKIP))
	regs.Endgroup()
	assert.Equal(t, dimen.Zero, regs.D(P_LINESKIP))
	assert.Equal(t, 500, regs.N(P_HYPHENPENALTY))
	regs.Endgroup()
	assert.Equal(t, 50, regs.N(P_HYPHENPENALTY))
	regs.Endgroup() // unbalanced, must be harmless
	assert.Equal(t, 50, regs.N(P_HYPHENPENALTY))
}

func TestRegisterKeyRange(t *testing.T) {
	regs := NewTypesettingRegisters()
	assert.Panics(t, func() { regs.Get(P_STOPPER) })
	assert.Panics(t, func() { regs.Push(none, 1) })
}
