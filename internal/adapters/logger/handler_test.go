package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/parcel/internal/adapters/logger"
)

func TestPrettyHandler_Handle_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info level", level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "warn level", level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error level", level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
		{name: "debug level filtered", level: slog.LevelDebug, msg: "debug message", goldenName: "handler_debug_filtered"},
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

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	tests := []struct {
		name  string
		attrs []slog.Attr
		want  string
	}{
		{
			name:  "package leads the line",
			attrs: []slog.Attr{slog.String("package", "foo@1.0.0")},
			want:  "foo@1.0.0: fetched\n",
		},
		{
			name:  "multiple attributes",
			attrs: []slog.Attr{slog.String("a", "1"), slog.Int("b", 2)},
			want:  "fetched a=1 b=2\n",
		},
		{
			name:  "empty attribute value",
			attrs: []slog.Attr{slog.String("empty", "")},
			want:  "fetched empty=\"\"\n",
		},
		{
			name:  "values with spaces are quoted",
			attrs: []slog.Attr{slog.String("constraint", ">= 1.0, < 2.0")},
			want:  "fetched constraint=\">= 1.0, < 2.0\"\n",
		},
		{
			name:  "group attributes are expanded",
			attrs: []slog.Attr{slog.Group("entry", slog.String("platform", "any"), slog.Int("size", 3))},
			want:  "fetched entry.platform=any entry.size=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			handler := logger.NewPrettyHandler(buf, nil).WithAttrs(tt.attrs)
			slog.New(handler).Info("fetched")

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	handler := logger.NewPrettyHandler(buf, nil).WithGroup("cache")
	slog.New(handler).Info("hit", "key", "foo/1.0.0/any")

	assert.Equal(t, "hit cache.key=foo/1.0.0/any\n", buf.String())
}

func TestPrettyHandler_NestedGroups(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	handler := logger.NewPrettyHandler(buf, nil).WithGroup("cache").WithGroup("entry")
	slog.New(handler).Info("hit", "package", "foo")

	// Inside a group "package" is an ordinary key.
	assert.Equal(t, "hit cache.entry.package=foo\n", buf.String())
}

func TestPrettyHandler_RecordPackageIsSubject(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil))
	lg.Warn("restarting download", "package", "foo@1.0.0", "attempt", 2)
	lg.Error("fetch failed", "package", "bar@2.0.0")

	assert.Equal(t, "! foo@1.0.0: restarting download attempt=2\n✗ bar@2.0.0: fetch failed\n", buf.String())
}
