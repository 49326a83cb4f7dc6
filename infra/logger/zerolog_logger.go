package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// output is the process-wide destination set by Setup. Loggers created
// before Setup keep their writer.
var output struct {
	mu    sync.RWMutex
	set   bool
	w     io.Writer
	level zerolog.Level
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// Setup directs every logger created afterwards to the configured writer.
// An empty Level keeps LOG_LEVEL; an empty Format follows APP_ENV.
func Setup(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	level := envLevel()
	if c.Level != "" {
		level, _ = zerolog.ParseLevel(strings.ToLower(c.Level))
	}
	var w io.Writer = os.Stdout
	if c.File != "" {
		w = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
		}
	}
	switch {
	case c.Format == FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: c.File != ""}
	case c.Format == "" && c.File == "" && devEnv():
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	output.mu.Lock()
	output.set, output.w, output.level = true, w, level
	output.mu.Unlock()
	return nil
}

// NewZerologLogger creates a ZerologLogger writing to the destination chosen
// by Setup. Without Setup, APP_ENV=dev selects console output and LOG_LEVEL
// sets the minimum level (debug, info, warn, error).
func NewZerologLogger(component string) Logger {
	output.mu.RLock()
	set, w, level := output.set, output.w, output.level
	output.mu.RUnlock()
	if set {
		return newZerolog(component, w, level)
	}
	w = os.Stdout
	if devEnv() {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return newZerolog(component, w, envLevel())
}

// NewZerologLoggerWithWriter writes JSON lines for component to w.
func NewZerologLoggerWithWriter(component string, w io.Writer) *ZerologLogger {
	return newZerolog(component, w, envLevel())
}

func newZerolog(component string, w io.Writer, level zerolog.Level) *ZerologLogger {
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	if level != zerolog.NoLevel {
		z = z.Level(level)
	}
	return &ZerologLogger{log: z}
}

func envLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		return zerolog.NoLevel
	}
	return lvl
}

func devEnv() bool { return strings.ToLower(os.Getenv("APP_ENV")) == "dev" }

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
