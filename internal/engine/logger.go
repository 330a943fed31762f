package engine

// Logger is the narrow logging seam the engine depends on; callers
// supply a concrete implementation (the CLI wires a logrus-backed one,
// see cmd/rpgo) so the engine package itself stays free of a logging
// dependency. Mirrors the teacher CLI's hand-rolled Logger interface.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything; used as the default when no logger is
// supplied, and in tests.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}
