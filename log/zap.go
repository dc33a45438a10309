package log

import "go.uber.org/zap"

// Zap adapts a *zap.Logger to the Logger interface.
type Zap struct {
	l *zap.Logger
}

// NewZap wraps an existing zap logger.
func NewZap(l *zap.Logger) Logger {
	return &Zap{l: l}
}

// NewProduction builds a Zap-backed Logger with zap's production defaults.
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewZap(l), nil
}

func toZapFields(fields []Field) []zap.Field {
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		zf[i] = zap.Any(f.Key, f.Value)
	}
	return zf
}

func (z *Zap) With(fields ...Field) Logger {
	return &Zap{l: z.l.With(toZapFields(fields)...)}
}

func (z *Zap) Debug(msg string, fields ...Field) { z.l.Debug(msg, toZapFields(fields)...) }
func (z *Zap) Info(msg string, fields ...Field)  { z.l.Info(msg, toZapFields(fields)...) }
func (z *Zap) Warn(msg string, fields ...Field)  { z.l.Warn(msg, toZapFields(fields)...) }
func (z *Zap) Error(msg string, fields ...Field) { z.l.Error(msg, toZapFields(fields)...) }
