package main

import "github.com/sirupsen/logrus"

// logrusLogger adapts a *logrus.Logger to engine.Logger, the CLI's
// concrete replacement for the teacher's hand-rolled simpleCLILogger.
type logrusLogger struct {
	entry *logrus.Entry
}

func newLogrusLogger(verbose bool) logrusLogger {
	l := logrus.New()
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return logrusLogger{entry: logrus.NewEntry(l)}
}

func (l logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l logrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
