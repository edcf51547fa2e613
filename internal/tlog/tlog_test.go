package tlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevelAccepted(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "warning", "error"} {
		_, err := ParseLevel(name)
		require.NoError(t, err, name)
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestLoggerWritesMessageAndKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)
	l.Info("block mined", "index", 3, "nonce", 42)

	out := buf.String()
	require.Contains(t, out, "block mined")
	require.Contains(t, out, "index=3")
	require.Contains(t, out, "nonce=42")
}

func TestLoggerBelowLevelIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)
	l.Debug("should not appear")
	require.Empty(t, strings.TrimSpace(buf.String()))
}

func TestWithAttachesPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf).With("component", "chain")
	l.Info("ready")
	require.Contains(t, buf.String(), "component=chain")
}
