package core

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EMISSING, "font %q not found", "Helvetica")
	assert.Equal(t, EMISSING, Code(err))
	assert.Equal(t, `font "Helvetica" not found`, UserMessage(err))
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
}

func TestWrapErrorKeepsChain(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := WrapError(sentinel, EFONTLOAD, "cannot parse %s", "x.ttf")
	wrapped := fmt.Errorf("resolving: %w", err)
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, EFONTLOAD, Code(wrapped))
	assert.Contains(t, err.Error(), "[126]")
}

func TestWrapErrorNil(t *testing.T) {
	err := WrapError(nil, EINVALID, "bad input")
	assert.Error(t, err)
	assert.Equal(t, "bad input", UserMessage(err))
	assert.Equal(t, "[123] bad input: invalid", err.Error())
}

func TestFprintUserError(t *testing.T) {
	var buf bytes.Buffer
	FprintUserError(&buf, Error(EINVALID, "wrap width must not be negative"))
	assert.Equal(t, "[123] wrap width must not be negative\n", buf.String())
	buf.Reset()
	FprintUserError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
