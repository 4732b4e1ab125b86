package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/mpkg/internal/ui/output"
	"go.trai.ch/mpkg/internal/ui/style"
)

// levelStyle is the icon and colour a record level is printed with.
type levelStyle struct {
	icon  string
	color termenv.Color
}

func styleFor(level slog.Level) levelStyle {
	switch {
	case level >= slog.LevelError:
		return levelStyle{icon: style.Cross, color: termenv.RGBColor(string(style.Red))}
	case level >= slog.LevelWarn:
		return levelStyle{icon: style.Warning, color: termenv.RGBColor(string(style.Yellow))}
	case level < slog.LevelInfo:
		return levelStyle{icon: style.Dot, color: termenv.RGBColor(string(style.Slate))}
	default:
		return levelStyle{color: termenv.RGBColor(string(style.Slate))}
	}
}

// PrettyHandler is a slog.Handler that prints one coloured line per record,
// followed by its attributes as key=value pairs.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	attrs  []string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
// The level from opts is consulted on every record, so a *slog.LevelVar can
// change verbosity after construction.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ls := styleFor(r.Level)

	var b strings.Builder
	if ls.icon != "" {
		b.WriteString(ls.icon)
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)

	for _, attr := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(formatAttr(h.prefix, attr))
		return true
	})

	styled := h.out.String(b.String()).Foreground(ls.color)
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, attr := range attrs {
		next.attrs = append(next.attrs, formatAttr(h.prefix, attr))
	}
	return next
}

// WithGroup returns a new Handler whose later attributes are nested under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		prefix: h.prefix,
		attrs:  append([]string(nil), h.attrs...),
	}
}

// formatAttr renders key=value. Values with spaces, such as unified address
// classes, are quoted so the pair stays one token.
func formatAttr(prefix string, attr slog.Attr) string {
	v := attr.Value.Resolve().String()
	if strings.ContainsAny(v, " =\"") {
		v = strconv.Quote(v)
	}
	return prefix + attr.Key + "=" + v
}
