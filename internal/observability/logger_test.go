package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/semo00000/champ-electrostatique/internal/config"
)

type syncBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func TestConsoleLoggerColors(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "champ",
		Colors:      config.ColorConfig{Info: "green"},
	}, &buf)

	GetLogger().Named("governor").Info("quality tier changed", zap.Int("to", 1))
	Sync()

	out := buf.String()
	assert.Contains(t, out, colorMap["green"]+"INFO"+colorReset)
	assert.Contains(t, out, "champ.governor.")
	assert.Contains(t, out, "quality tier changed")
	assert.Contains(t, out, `"to": 1`)
}

func TestJSONLoggerAndLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, &buf)
	l := GetLogger()
	l.Info("hidden")
	l.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"WARN"`)
	assert.Contains(t, lines[0], `"msg":"shown"`)
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{Level: "loud", Format: "json"}, &buf)
	GetLogger().Debug("no")
	GetLogger().Info("yes")
	assert.NotContains(t, buf.String(), `"msg":"no"`)
	assert.Contains(t, buf.String(), `"msg":"yes"`)
}

func TestInitializeOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second syncBuffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &second)
	GetLogger().Info("once")
	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.String())
}

func TestFileRotationCore(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	path := filepath.Join(t.TempDir(), "champ.log")
	Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&bytes.Buffer{}))
	GetLogger().Info("to file")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestFallbackLogger(t *testing.T) {
	ResetForTest()
	l := GetLogger()
	require.NotNil(t, l)
	assert.Equal(t, "fallback", l.Name())
	Sync()
}
