package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Stdout is the sentinel destination that routes log lines to standard
// output instead of a file. Matching is case insensitive.
const Stdout = "stdout"

const timeFormat = "2006-01-02 15:04:05,000"

// Logger emits timestamped, leveled log lines of the form
//
//	2024-01-02 15:04:05,123 [INFO callerFunc 42] message
//
// where callerFunc and 42 identify the immediate caller of the logging
// method. A file destination is opened in append mode for every line and
// closed again, so concurrent invocations of the binary can share one file.
type Logger struct {
	zl zerolog.Logger
}

// New constructs a Logger writing to dest, which is either the Stdout
// sentinel or a file path. A file destination is probed once so an unusable
// path (for example a missing directory) fails construction instead of
// silently dropping lines later. Extra writers override the destination and
// exist for tests.
func New(dest, level string, writers ...io.Writer) (*Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.TimeFieldFormat = timeFormat

	var output io.Writer
	switch {
	case len(writers) > 0:
		output = io.MultiWriter(writers...)
	case strings.EqualFold(dest, Stdout):
		output = os.Stdout
	default:
		w := appendWriter{path: dest}
		if err := w.probe(); err != nil {
			return nil, fmt.Errorf("logger: destination %q unusable: %w", dest, err)
		}
		output = w
	}

	cw := zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    true,
		TimeFormat: timeFormat,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
		FormatTimestamp: func(i interface{}) string { return fmt.Sprint(i) },
		FormatLevel:     func(i interface{}) string { return "[" + strings.ToUpper(fmt.Sprint(i)) },
		FormatCaller:    func(i interface{}) string { return fmt.Sprint(i) + "]" },
	}

	zl := zerolog.New(cw).With().Timestamp().Logger().Level(lvl)
	return &Logger{zl: zl}, nil
}

// Discard returns a Logger whose output is thrown away. It serves as a
// fallback when a component is constructed without a logger.
func Discard() *Logger {
	lg, _ := New(Stdout, zerolog.DebugLevel.String(), io.Discard)
	return lg
}

// Error writes an error level log line.
func (l *Logger) Error(msg string) {
	l.emit(l.zl.Error(), msg)
}

// Errorf writes a formatted error level log line.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(l.zl.Error(), fmt.Sprintf(format, args...))
}

// Info writes an info level log line.
func (l *Logger) Info(msg string) {
	l.emit(l.zl.Info(), msg)
}

// Infof writes a formatted info level log line.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(l.zl.Info(), fmt.Sprintf(format, args...))
}

// Debug writes a debug level log line.
func (l *Logger) Debug(msg string) {
	l.emit(l.zl.Debug(), msg)
}

// Debugf writes a formatted debug level log line.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(l.zl.Debug(), fmt.Sprintf(format, args...))
}

func (l *Logger) emit(ev *zerolog.Event, msg string) {
	ev.Str(zerolog.CallerFieldName, callSite(3)).Msg(msg)
}

// callSite renders "funcName line" for the frame skip levels above it.
func callSite(skip int) string {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown 0"
	}
	name := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	return fmt.Sprintf("%s %d", name, line)
}

func parseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = zerolog.DebugLevel.String()
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, err
	}
	return lvl, nil
}

// appendWriter opens the destination file for every write and closes it
// again; no persistent handle is held across log calls.
type appendWriter struct {
	path string
}

func (w appendWriter) Write(p []byte) (int, error) {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

func (w appendWriter) probe() error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
