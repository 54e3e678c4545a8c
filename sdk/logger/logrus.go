package logger

import (
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger is the alternative backend selected with log.backend=logrus.
func NewLogrusLogger(opts ...LoggerOption) logger.ILogger {
	options := buildOptions(opts)

	l := logrus.New()
	l.SetOutput(options.Output)
	if options.Format == logger.JSONFormat {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
	level, err := logrus.ParseLevel(string(options.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	entry := logrus.NewEntry(l)
	if options.Name != "" {
		entry = entry.WithField("logger", options.Name)
	}
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) WithFields(fields map[string]any) logger.ILogger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Trace(args ...any)                 { l.entry.Trace(args...) }
func (l *logrusLogger) Tracef(format string, args ...any) { l.entry.Tracef(format, args...) }
func (l *logrusLogger) Debug(args ...any)                 { l.entry.Debug(args...) }
func (l *logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Info(args ...any)                  { l.entry.Info(args...) }
func (l *logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warn(args ...any)                  { l.entry.Warn(args...) }
func (l *logrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Error(args ...any)                 { l.entry.Error(args...) }
func (l *logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
func (l *logrusLogger) Fatal(args ...any)                 { l.entry.Fatal(args...) }
func (l *logrusLogger) Fatalf(format string, args ...any) { l.entry.Fatalf(format, args...) }

func (l *logrusLogger) GetLevel() logger.LogLevel {
	lvl := l.entry.Logger.GetLevel()
	if lvl == logrus.WarnLevel {
		return logger.WarnLevel
	}
	return logger.LogLevel(lvl.String())
}

func (l *logrusLogger) IsLevelEnabled(level logger.LogLevel) bool {
	lvl, err := logrus.ParseLevel(string(level))
	if err != nil {
		return false
	}
	return l.entry.Logger.IsLevelEnabled(lvl)
}
