package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.rv.dev/rv/internal/adapters/logger"
)

func TestPrettyHandler_Handle_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		msg     string
		want    string
		filters bool
	}{
		{name: "info level", level: slog.LevelInfo, msg: "information message", want: "information message\n"},
		{name: "warn level", level: slog.LevelWarn, msg: "warning message", want: "! warning message\n"},
		{name: "error level", level: slog.LevelError, msg: "error message", want: "✗ error message\n"},
		{name: "debug level filtered", level: slog.LevelDebug, msg: "debug message", want: "", filters: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			handler := logger.NewPrettyHandler(buf, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			})
			lg := slog.New(handler)

			lg.Log(t.Context(), tt.level, tt.msg)

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	tests := []struct {
		name  string
		attrs []slog.Attr
		msg   string
		want  string
	}{
		{
			name:  "single attribute",
			attrs: []slog.Attr{slog.String("key", "value")},
			msg:   "single attr message",
			want:  "single attr message key=value\n",
		},
		{
			name:  "multiple attributes",
			attrs: []slog.Attr{slog.String("a", "1"), slog.Int("b", 2)},
			msg:   "multi attr message",
			want:  "multi attr message a=1 b=2\n",
		},
		{
			name:  "empty attribute value",
			attrs: []slog.Attr{slog.String("empty", "")},
			msg:   "empty value message",
			want:  "empty value message empty=\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			handler := logger.NewPrettyHandler(buf, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}).WithAttrs(tt.attrs)
			lg := slog.New(handler)

			lg.Info(tt.msg)

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	handler := logger.NewPrettyHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}).WithGroup("repo").WithAttrs([]slog.Attr{slog.String("url", "cran.example.org")})
	lg := slog.New(handler)

	lg.Info("fetching index")

	assert.Equal(t, "fetching index repo.url=cran.example.org\n", buf.String())
}

func TestPrettyHandler_NestedGroups(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	handler := logger.NewPrettyHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}).WithGroup("outer").WithGroup("inner").WithAttrs([]slog.Attr{slog.String("k", "v")})
	lg := slog.New(handler)

	lg.Info("nested")

	assert.Equal(t, "nested outer.inner.k=v\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := logger.NewPrettyHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})

	require.False(t, handler.Enabled(t.Context(), slog.LevelInfo))
	require.True(t, handler.Enabled(t.Context(), slog.LevelWarn))
	require.True(t, handler.Enabled(t.Context(), slog.LevelError))
}

func TestPrettyHandler_NilWriterDefaultsToStderr(t *testing.T) {
	require.NotPanics(t, func() {
		logger.NewPrettyHandler(nil, nil)
	})
}
