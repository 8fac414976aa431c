package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.log")

	logger, err := NewLogger(path, InfoLevel, NoStdout)
	assert.Nil(t, err)

	logger.Debug("hidden")
	logger.With(String("code", "abc1234"), Int("status", 301)).Info("/abc1234")
	logger.Error("failed", Error(errors.New("boom")))
	assert.Nil(t, logger.Sync())

	data, err := os.ReadFile(path)
	assert.Nil(t, err)

	var lines []map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	for decoder.More() {
		var line map[string]interface{}
		assert.Nil(t, decoder.Decode(&line))
		lines = append(lines, line)
	}
	assert.Len(t, lines, 2)
	assert.Equal(t, "/abc1234", lines[0]["msg"])
	assert.Equal(t, "abc1234", lines[0]["code"])
	assert.Equal(t, float64(301), lines[0]["status"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestNoOpLogger(t *testing.T) {
	logger, err := NewLogger("", DebugLevel, NoStdout)
	assert.Nil(t, err)
	logger.Info("nothing")
}
