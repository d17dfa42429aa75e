package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalang/nova/engine"
)

func TestStubFrontendEvaluatesLiteral(t *testing.T) {
	e := engine.New(engine.WithFrontend(stubFrontend{}))

	v, err := e.Eval("42")
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.I)
}

func TestStubFrontendEvaluatesStringLiteral(t *testing.T) {
	e := engine.New(engine.WithFrontend(stubFrontend{}))

	v, err := e.Eval(`"hello"`)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Str)
}

func TestStubFrontendEvaluatesBinaryExpression(t *testing.T) {
	e := engine.New(engine.WithFrontend(stubFrontend{}))

	v, err := e.Eval("3 + 4")
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.I)
}

func TestStubFrontendRejectsUnparseableSource(t *testing.T) {
	e := engine.New(engine.WithFrontend(stubFrontend{}))

	_, err := e.Eval("not valid nova")
	require.Error(t, err)
}
