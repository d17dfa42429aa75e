package novaerr_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalang/nova/novaerr"
)

func TestNewAndErrorFormatting(t *testing.T) {
	err := novaerr.New(novaerr.KindArithZero, "division by %s", "zero")
	assert.EqualError(t, err, "ArithZero: division by zero")
}

func TestKindOfUnwrapsRuntimeError(t *testing.T) {
	err := novaerr.New(novaerr.KindTypeOp, "bad operand")
	kind, ok := novaerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, novaerr.KindTypeOp, kind)

	_, ok = novaerr.KindOf(errors.New("plain error"))
	assert.False(t, ok)
}

func TestErrorsIsMatchesSentinelByKind(t *testing.T) {
	err := novaerr.New(novaerr.KindResourceLimit, "loop limit exceeded")
	assert.True(t, errors.Is(err, novaerr.Sentinel(novaerr.KindResourceLimit)))
	assert.False(t, errors.Is(err, novaerr.Sentinel(novaerr.KindTimeout)))
}

func TestWithStackKeepsAllFramesUnderLimit(t *testing.T) {
	err := novaerr.New(novaerr.KindUserThrown, "boom")
	frames := []novaerr.Frame{
		{DisplayName: "a"},
		{DisplayName: "b"},
	}
	err.WithStack(frames, 16)
	assert.Len(t, err.Stack, 2)
}

func TestWithStackFoldsFramesOverLimit(t *testing.T) {
	err := novaerr.New(novaerr.KindUserThrown, "boom")
	frames := make([]novaerr.Frame, 20)
	for i := range frames {
		frames[i] = novaerr.Frame{DisplayName: "frame"}
	}
	err.WithStack(frames, 5)

	// 4 kept verbatim + 1 synthetic "omitted" + 1 final frame = 6
	assert.Len(t, err.Stack, 6)
	assert.Contains(t, err.Stack[4].DisplayName, "frames omitted")
}

func TestWithLocationAttachesSourcePosition(t *testing.T) {
	err := novaerr.New(novaerr.KindTypeOp, "bad")
	err.WithLocation(novaerr.SourceLocation{File: "main.nova", Line: 3, Column: 5}, "x + y")
	assert.Equal(t, "main.nova", err.Location.File)
	assert.Equal(t, "x + y", err.SourceLine)
}

func TestRenderWithoutTTYWritesPlainText(t *testing.T) {
	err := novaerr.New(novaerr.KindUndefinedProperty, "no field 'x'")
	err.WithLocation(novaerr.SourceLocation{File: "a.nova", Line: 1, Column: 1, Length: 1}, "x.y")
	err.WithStack([]novaerr.Frame{{DisplayName: "main"}}, 16)

	var buf bytes.Buffer
	novaerr.Render(&buf, err)

	out := buf.String()
	assert.Contains(t, out, "UndefinedProperty: no field 'x'")
	assert.Contains(t, out, "at a.nova:1:1")
	assert.Contains(t, out, "x.y")
	assert.Contains(t, out, "at main")
}
