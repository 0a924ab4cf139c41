package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	l.Debug("expanding frontier")
	assert.Zero(t, buf.Len(), "debug written at info level")

	l.Info("plan ready")
	assert.Contains(t, buf.String(), "plan ready")

	buf.Reset()
	l.SetLevel(log.DebugLevel)
	l.Debug("expanding frontier")
	assert.Contains(t, buf.String(), "expanding frontier")
}

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, log.InfoLevel)

	assert.Same(t, base, commandLogger(base, ""))

	commandLogger(base, "balance").Info("planning")
	assert.Contains(t, buf.String(), "balance")
	assert.Contains(t, buf.String(), "planning")
}

func TestStep(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	startStep(l, "Planned balance").done("moves", 3, "total", 34)
	out := buf.String()
	for _, want := range []string{"Planned balance", "moves=3", "total=34", "elapsed="} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	startStep(l, "Planned load").failed(errors.New("no free slot"))
	assert.Contains(t, buf.String(), "Planned load failed")
	assert.Contains(t, buf.String(), "no free slot")
}

func TestLoggerContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	assert.Same(t, l, loggerFromContext(ctx))
}
