package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Slog returns a *slog.Logger that writes through the zap core, so packages
// built against log/slog share the same sink, level, and trace enrichment.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(slogHandler{zap: zap.NewNop()})
	}
	return slog.New(slogHandler{zap: l.Zap()})
}

type slogHandler struct {
	zap   *zap.Logger
	attrs []zap.Field
}

func (h slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.zap.Core().Enabled(zapLevel(level))
}

func (h slogHandler) Handle(ctx context.Context, record slog.Record) error {
	fields := make([]zap.Field, 0, len(h.attrs)+record.NumAttrs()+2)
	fields = append(fields, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, attrToField(attr))
		return true
	})
	fields = append(fields, traceFields(ctx)...)

	if ce := h.zap.Check(zapLevel(record.Level), record.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]zap.Field, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, attr := range attrs {
		merged = append(merged, attrToField(attr))
	}
	return slogHandler{zap: h.zap, attrs: merged}
}

func (h slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return slogHandler{zap: h.zap.With(zap.Namespace(name)), attrs: h.attrs}
}

func attrToField(attr slog.Attr) zap.Field {
	value := attr.Value.Resolve()
	if err, ok := value.Any().(error); ok {
		return zap.NamedError(attr.Key, err)
	}
	return zap.Any(attr.Key, value.Any())
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
