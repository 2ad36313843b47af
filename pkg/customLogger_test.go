package eeglab_test

import (
	"bytes"
	"log/slog"
	"testing"

	eeglab "github.com/next-exp/eeglab_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := eeglab.NewSlogLogger(&stdout, &stderr, slog.LevelInfo)

	logger.Info("Reading rec.fdt", "raw")
	logger.Warn("Data will be preloaded", "raw")
	logger.Error("boom")

	lines := bytes.Split(bytes.TrimSpace(stdout.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[raw\] Reading rec.fdt$`, string(lines[0]))
	assert.Contains(t, string(lines[1]), "[WARN] [raw] Data will be preloaded")
	assert.Contains(t, stderr.String(), `"msg":"boom"`)
	assert.Contains(t, stderr.String(), `"level":"ERROR"`)
}

func TestSlogLoggerLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := eeglab.NewSlogLogger(&stdout, &stderr, slog.LevelWarn)
	logger.Info("hidden", "main")
	assert.Empty(t, stdout.String())
}
