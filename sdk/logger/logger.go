package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/rs/zerolog"
)

type LoggerOptions struct {
	Name   string
	Output io.Writer
	Format logger.LogFormat
	Level  logger.LogLevel
}

type LoggerOption func(opts *LoggerOptions)

func NameLoggerOption(name string) LoggerOption {
	return func(opts *LoggerOptions) {
		opts.Name = name
	}
}

func OutputLoggerOption(out io.Writer) LoggerOption {
	return func(opts *LoggerOptions) {
		opts.Output = out
	}
}

func FormatLoggerOption(format logger.LogFormat) LoggerOption {
	return func(opts *LoggerOptions) {
		opts.Format = format
	}
}

func LevelLoggerOption(level logger.LogLevel) LoggerOption {
	return func(opts *LoggerOptions) {
		opts.Level = level
	}
}

func buildOptions(opts []LoggerOption) *LoggerOptions {
	options := &LoggerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Output == nil {
		options.Output = os.Stderr
	}
	if options.Level == "" {
		options.Level = logger.InfoLevel
	}
	if options.Format == "" {
		options.Format = logger.TextFormat
	}
	return options
}

type zeroLogger struct {
	logger zerolog.Logger
	level  logger.LogLevel
}

// NewLogger creates the default zerolog backed logger.
func NewLogger(opts ...LoggerOption) logger.ILogger {
	options := buildOptions(opts)

	out := options.Output
	if options.Format != logger.JSONFormat {
		out = zerolog.ConsoleWriter{Out: options.Output, NoColor: true, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(string(options.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
		options.Level = logger.InfoLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if options.Name != "" {
		ctx = ctx.Str("logger", options.Name)
	}

	return &zeroLogger{
		logger: ctx.Logger(),
		level:  options.Level,
	}
}

// Nop returns a logger that discards everything.
func Nop() logger.ILogger {
	return &zeroLogger{
		logger: zerolog.Nop(),
		level:  logger.FatalLevel,
	}
}

func (l *zeroLogger) WithFields(fields map[string]any) logger.ILogger {
	return &zeroLogger{
		logger: l.logger.With().Fields(fields).Logger(),
		level:  l.level,
	}
}

func (l *zeroLogger) Trace(args ...any) {
	l.logger.Trace().Msg(fmt.Sprint(args...))
}

func (l *zeroLogger) Tracef(format string, args ...any) {
	l.logger.Trace().Msgf(format, args...)
}

func (l *zeroLogger) Debug(args ...any) {
	l.logger.Debug().Msg(fmt.Sprint(args...))
}

func (l *zeroLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *zeroLogger) Info(args ...any) {
	l.logger.Info().Msg(fmt.Sprint(args...))
}

func (l *zeroLogger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

func (l *zeroLogger) Warn(args ...any) {
	l.logger.Warn().Msg(fmt.Sprint(args...))
}

func (l *zeroLogger) Warnf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *zeroLogger) Error(args ...any) {
	l.logger.Error().Msg(fmt.Sprint(args...))
}

func (l *zeroLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

func (l *zeroLogger) Fatal(args ...any) {
	l.logger.Fatal().Msg(fmt.Sprint(args...))
}

func (l *zeroLogger) Fatalf(format string, args ...any) {
	l.logger.Fatal().Msgf(format, args...)
}

func (l *zeroLogger) GetLevel() logger.LogLevel {
	return l.level
}

func (l *zeroLogger) IsLevelEnabled(level logger.LogLevel) bool {
	lvl, err := zerolog.ParseLevel(string(level))
	if err != nil {
		return false
	}
	return lvl >= l.logger.GetLevel()
}
