package log

// NoLog is a no-op Logger, used as the default when a caller does not inject
// one.
type NoLog struct{}

// NewNoOpLogger returns a Logger that discards everything written to it.
func NewNoOpLogger() Logger { return NoLog{} }

func (NoLog) With(fields ...Field) Logger  { return NoLog{} }
func (NoLog) Debug(msg string, f ...Field) {}
func (NoLog) Info(msg string, f ...Field)  {}
func (NoLog) Warn(msg string, f ...Field)  {}
func (NoLog) Error(msg string, f ...Field) {}
