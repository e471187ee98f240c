package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrank/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.buf.Write(p)
}

func (w *testMemOutWriter) Sync() error { return nil }

// lines drains the written logs.
func (w *testMemOutWriter) lines() []string {
	w.lock.Lock()
	defer w.lock.Unlock()
	res := strings.Split(strings.TrimSpace(w.buf.String()), "\n")
	w.buf.Reset()
	if len(res) == 1 && res[0] == "" {
		return []string{}
	}
	return res
}

var memOutLock sync.Mutex

func withMemOut(t *testing.T) *testMemOutWriter {
	memOutLock.Lock()
	w := &testMemOutWriter{}
	writers.Upsert(testMemAsOut, w)
	t.Cleanup(func() {
		_, _ = writers.Pop(testMemAsOut)
		memOutLock.Unlock()
	})
	return w
}

func decodeLine(t *testing.T, line string) map[string]any {
	res := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(line), &res), line)
	return res
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())

	require.Equal(t, LogLevelWarn, LogLevelOf(" warn "))
	require.Equal(t, LogLevelDebug, LogLevelOf("verbose"))
	require.Equal(t, zapcore.ErrorLevel, getLogLevelOrDefault("error"))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(""))
}

func TestLogEncoderOf(t *testing.T) {
	testcases := []struct {
		name    string
		want    logEncoderType
		wantErr bool
	}{
		{"", JSON, false},
		{"JSON", JSON, false},
		{"text", PlainText, false},
		{"console", PlainText, false},
		{"yaml", _encMax, true},
	}
	for _, tc := range testcases {
		enc, err := LogEncoderOf(tc.name)
		require.Equal(t, tc.want, enc)
		if tc.wantErr {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestXLogger_JSON(t *testing.T) {
	out := withMemOut(t)
	logger := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelInfo),
	)
	require.Equal(t, "info", logger.Level())

	logger.Debug("hidden")
	logger.Info("counted", zap.Int("words", 3))
	logger.Warn("short word", zap.String("word", "a"))
	logger.Error(errors.New("broken pipe"), "write report")
	require.NoError(t, logger.Sync())

	lines := out.lines()
	require.Len(t, lines, 3)
	info := decodeLine(t, lines[0])
	require.Equal(t, "INFO", info["lvl"])
	require.Equal(t, "counted", info["msg"])
	require.Equal(t, float64(3), info["words"])
	require.Contains(t, info["callAt"], "xlog_test.go")
	require.Equal(t, "broken pipe", decodeLine(t, lines[2])["error"])

	logger.IncreaseLogLevel(zapcore.ErrorLevel)
	logger.Info("hidden")
	logger.Logf(zapcore.ErrorLevel, "%d files failed", 2)
	lines = out.lines()
	require.Len(t, lines, 1)
	require.Equal(t, "2 files failed", decodeLine(t, lines[0])["msg"])
}

func TestXLogger_PlainText(t *testing.T) {
	out := withMemOut(t)
	logger := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerEncoder(PlainText),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerTimeEncoder(nil),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	)
	logger.Debug("plain")
	lines := out.lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "DEBUG")
	require.Contains(t, lines[0], "plain")
}

func TestXLogger_ErrorStack(t *testing.T) {
	out := withMemOut(t)
	logger := NewXLogger(WithXLoggerWriter(testMemAsOut))

	logger.ErrorStack(infra.NewErrorStack("no such word"), "select failed")
	wrapped := errors.Join(infra.WrapErrorStackWithMessage(errors.New("eof"), "read a.txt"))
	logger.ErrorStack(wrapped, "count failed")
	logger.ErrorStack(errors.New("plain"), "no frames")

	lines := out.lines()
	require.Len(t, lines, 3)

	first := decodeLine(t, lines[0])
	require.Equal(t, "no such word", first["error"])
	frames, ok := first["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	require.Contains(t, frames[0], "TestXLogger_ErrorStack")

	second := decodeLine(t, lines[1])
	require.Equal(t, "read a.txt: eof", second["error"])
	require.NotEmpty(t, second["errorStack"])

	third := decodeLine(t, lines[2])
	require.Equal(t, "plain", third["error"])
	require.Nil(t, third["errorStack"])
}

type plainKey string

func TestXLogger_ContextFields(t *testing.T) {
	out := withMemOut(t)
	logger := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerContextFieldExtract("traceId"),
		WithXLoggerContextFieldExtract("file", "input"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
	)

	ctx := context.WithValue(context.Background(), ContextKey("traceId"), "t-1")
	ctx = context.WithValue(ctx, ContextKey("secret"), "s3cr3t")
	ctx = context.WithValue(ctx, plainKey("file"), "plain")
	logger.InfoContext(ctx, "reading")
	logger.ErrorStackContext(ctx, infra.NewErrorStack("denied"), "open failed")
	logger.DebugContext(nil, "no context")

	lines := out.lines()
	require.Len(t, lines, 3)
	info := decodeLine(t, lines[0])
	require.Equal(t, "t-1", info["traceId"])
	require.Equal(t, "nil", info["input"], "only ContextKey keys are extracted")
	require.NotContains(t, lines[0], "s3cr3t")

	errLine := decodeLine(t, lines[1])
	require.Equal(t, "t-1", errLine["traceId"])
	require.Equal(t, "denied", errLine["error"])

	// Extracted in key order.
	require.Less(t, strings.Index(lines[0], `"input"`), strings.Index(lines[0], `"traceId"`))
}

func TestXLogger_DuplicateContextField(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(
			WithXLoggerContextFieldExtract("traceId"),
			WithXLoggerContextFieldExtract("traceId", "tid"),
		)
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
}

func TestXLogger_TeeCores(t *testing.T) {
	out := withMemOut(t)
	logger := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerConsoleCore(),
		WithXLoggerConsoleCore(),
	)
	logger.Info("twice")
	require.Len(t, out.lines(), 2)
}
