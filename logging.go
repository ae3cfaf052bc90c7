package slcand

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const daemonName = "slcand"

// LevelNotice sits between slog's Info and Warn and maps to syslog's
// notice severity.
const LevelNotice = slog.Level(2)

// Notice logs at notice level.
func Notice(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelNotice, msg, args...)
}

// NewLogger builds the process-wide logger. Foreground mode writes colored
// text to stdout, background mode writes to the system log. The choice is
// made once at startup; the returned closer releases the syslog connection
// at teardown.
func NewLogger(foreground bool) (*slog.Logger, io.Closer, error) {
	if foreground {
		return slog.New(newConsoleHandler(os.Stdout)), nopCloser{}, nil
	}
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_LOCAL5, daemonName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open syslog: %v", ErrDevice, err)
	}
	return slog.New(&syslogHandler{w: w}), w, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type syslogHandler struct {
	w     *syslog.Writer
	attrs []slog.Attr
}

func (h *syslogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *syslogHandler) Handle(_ context.Context, r slog.Record) error {
	msg := formatRecord(r, h.attrs)
	switch {
	case r.Level >= slog.LevelError:
		return h.w.Err(msg)
	case r.Level >= LevelNotice:
		return h.w.Notice(msg)
	default:
		return h.w.Info(msg)
	}
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &syslogHandler{w: h.w, attrs: merged}
}

func (h *syslogHandler) WithGroup(string) slog.Handler { return h }

var (
	infoColor   = color.New(color.FgGreen)
	noticeColor = color.New(color.FgCyan)
	errorColor  = color.New(color.FgRed)
)

type consoleHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	attrs []slog.Attr
}

func newConsoleHandler(out io.Writer) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: out}
}

func (h *consoleHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	tag := infoColor.Sprint("INFO")
	switch {
	case r.Level >= slog.LevelError:
		tag = errorColor.Sprint("ERROR")
	case r.Level >= LevelNotice:
		tag = noticeColor.Sprint("NOTICE")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "[%s] %s\n", tag, formatRecord(r, h.attrs))
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &consoleHandler{mu: h.mu, out: h.out, attrs: merged}
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

func formatRecord(r slog.Record, attrs []slog.Attr) string {
	var sb strings.Builder
	sb.WriteString(r.Message)
	for _, a := range attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	return sb.String()
}
