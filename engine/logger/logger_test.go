package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "test")

	l.Info("hidden")
	l.Warn("shown", "key", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=7")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "loud", "")

	l.Debug("quiet")
	l.Info("visible")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "visible")
}
