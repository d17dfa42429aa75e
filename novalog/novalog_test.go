package novalog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalang/nova/novalog"
)

func TestLoggerDropsEntriesBelowFloor(t *testing.T) {
	var buf bytes.Buffer
	l := novalog.New(&buf, novalog.LevelWarn)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	assert.Empty(t, buf.String())

	l.Warnf("warn %d", 3)
	assert.Contains(t, buf.String(), "[WARN] warn 3")
}

func TestLoggerAtDebugFloorEmitsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := novalog.New(&buf, novalog.LevelDebug)

	l.Debugf("a")
	l.Infof("b")
	l.Warnf("c")
	l.Errorf("d")

	out := buf.String()
	for _, want := range []string{"[DEBUG] a", "[INFO] b", "[WARN] c", "[ERROR] d"} {
		assert.True(t, strings.Contains(out, want), "expected %q in %q", want, out)
	}
}

func TestNilLoggerIsSafeNoOp(t *testing.T) {
	var l *novalog.Logger
	assert.NotPanics(t, func() {
		l.Infof("should not panic")
	})
}

func TestLevelStringNames(t *testing.T) {
	assert.Equal(t, "DEBUG", novalog.LevelDebug.String())
	assert.Equal(t, "INFO", novalog.LevelInfo.String())
	assert.Equal(t, "WARN", novalog.LevelWarn.String())
	assert.Equal(t, "ERROR", novalog.LevelError.String())
}
