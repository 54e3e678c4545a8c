package logger

type LogFormat string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

type LogLevel string

const (
	TraceLevel LogLevel = "trace"
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

type ILogger interface {
	WithFields(map[string]any) ILogger
	Trace(args ...any)
	Tracef(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	GetLevel() LogLevel
	IsLevelEnabled(level LogLevel) bool
}

var defaultLogger ILogger = &nopLogger{}

func Default() ILogger {
	return defaultLogger
}

func SetDefault(logger ILogger) {
	if logger == nil {
		return
	}
	defaultLogger = logger
}

type nopLogger struct{}

func (l *nopLogger) WithFields(map[string]any) ILogger { return l }
func (l *nopLogger) Trace(...any)                      {}
func (l *nopLogger) Tracef(string, ...any)             {}
func (l *nopLogger) Debug(...any)                      {}
func (l *nopLogger) Debugf(string, ...any)             {}
func (l *nopLogger) Info(...any)                       {}
func (l *nopLogger) Infof(string, ...any)              {}
func (l *nopLogger) Warn(...any)                       {}
func (l *nopLogger) Warnf(string, ...any)              {}
func (l *nopLogger) Error(...any)                      {}
func (l *nopLogger) Errorf(string, ...any)             {}
func (l *nopLogger) Fatal(...any)                      {}
func (l *nopLogger) Fatalf(string, ...any)             {}
func (l *nopLogger) GetLevel() LogLevel                { return InfoLevel }
func (l *nopLogger) IsLevelEnabled(LogLevel) bool      { return false }
