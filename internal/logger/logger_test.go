package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCentral(t *testing.T, cfg *LoggingConfig) (*CentralLogger, *SyncBuffer) {
	t.Helper()
	buf := &SyncBuffer{}
	cl, err := NewCentralLoggerWithWriter(cfg, buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })
	return cl, buf
}

func TestModuleLevels(t *testing.T) {
	cl, buf := newTestCentral(t, &LoggingConfig{
		DefaultLevel: "info",
		ModuleLevels: map[string]string{"playback": "debug"},
	})

	cl.Module("playback").Debug("voice started")
	cl.Module("soundbank").Debug("bank parsed")
	cl.Module("soundbank").Info("bank loaded", String("path", "bank.yaml"))

	out := buf.String()
	assert.Contains(t, out, "voice started")
	assert.NotContains(t, out, "bank parsed")
	assert.Contains(t, out, "module=soundbank")
	assert.Contains(t, out, "path=bank.yaml")
	assert.NotContains(t, out, "time=")
}

func TestSubModuleAndFields(t *testing.T) {
	cl, buf := newTestCentral(t, &LoggingConfig{DefaultLevel: "trace"})

	log := cl.Module("playback").Module("pool").With(String("item", "steps"))
	log.Trace("acquired", Float64("gain", 0.123456), Duration("fade", 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.Contains(t, out, "module=playback.pool")
	assert.Contains(t, out, "item=steps")
	assert.Contains(t, out, "gain=0.123")
	assert.Contains(t, out, "fade=1.5s")
}

func TestWithContextTraceID(t *testing.T) {
	cl, buf := newTestCentral(t, &LoggingConfig{})

	ctx := WithTraceID(context.Background(), "abc-123")
	cl.Module("cmd").WithContext(ctx).Info("tick")
	cl.Module("cmd").WithContext(context.Background()).Info("untraced")

	out := buf.String()
	assert.Contains(t, out, "trace_id=abc-123")
	assert.Equal(t, 1, strings.Count(out, "trace_id"))
}

func TestErrorIgnoresModuleLevel(t *testing.T) {
	cl, buf := newTestCentral(t, &LoggingConfig{
		ModuleLevels: map[string]string{"quiet": "error"},
	})

	log := cl.Module("quiet")
	log.Warn("dropped")
	log.Log(LogLevelWarn, "dropped too")
	log.Error("kept", Error(os.ErrNotExist))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "file does not exist")
}

func TestFileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "soundbank.log")
	cl, _ := newTestCentral(t, &LoggingConfig{
		Timezone:   "UTC",
		Console:    &ConsoleOutput{Enabled: false},
		FileOutput: &FileOutput{Enabled: true, Path: path},
	})

	cl.Module("soundbank").Info("bank loaded", Int("items", 12))
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "bank loaded", record["msg"])
	assert.Equal(t, "soundbank", record["module"])
	assert.InDelta(t, 12, record["items"], 0)
	assert.True(t, strings.HasSuffix(record["time"].(string), "Z"))
}

func TestRedaction(t *testing.T) {
	cl, buf := newTestCentral(t, &LoggingConfig{})

	cl.Module("cmd").Info("sentry configured",
		String("dsn", "https://key@o1.ingest.sentry.io/1"),
		String("note", "using token=supersecret"))

	out := buf.String()
	assert.NotContains(t, out, "supersecret")
	assert.NotContains(t, out, "key@")
	assert.Contains(t, out, "dsn=[REDACTED]")
}

func TestInvalidTimezone(t *testing.T) {
	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)
}

func TestNilConfig(t *testing.T) {
	_, err := NewCentralLogger(nil)
	require.Error(t, err)
}

func TestDiscardLogger(t *testing.T) {
	log := NewDiscardLogger()
	log.Error("nothing")
	assert.NoError(t, log.Flush())
}
