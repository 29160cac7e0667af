package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger is a small colored console logger scoped to a component name.
type Logger struct {
	name string
}

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgMagenta)
)

func New(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) prefix() string {
	return fmt.Sprintf("%s [%s]", time.Now().Format("2006-01-02 15:04:05"), l.name)
}

func (l *Logger) Info(format string, args ...interface{}) {
	infoColor.Fprintf(os.Stdout, "%s INFO %s\n", l.prefix(), fmt.Sprintf(format, args...))
}

func (l *Logger) Success(format string, args ...interface{}) {
	successColor.Fprintf(os.Stdout, "%s OK %s\n", l.prefix(), fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stdout, "%s WARN %s\n", l.prefix(), fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	debugColor.Fprintf(os.Stdout, "%s DEBUG %s\n", l.prefix(), fmt.Sprintf(format, args...))
}

// Error logs the message and returns an error carrying it, so call sites
// can do `return log.Error("failed to x", err)`.
func (l *Logger) Error(msg string, errs ...error) error {
	out := msg
	for _, err := range errs {
		if err != nil {
			out = fmt.Sprintf("%s: %v", out, err)
		}
	}
	errorColor.Fprintf(os.Stderr, "%s ERROR %s\n", l.prefix(), out)
	if len(errs) > 0 && errs[0] != nil {
		return fmt.Errorf("%s: %w", msg, errs[0])
	}
	return fmt.Errorf("%s", msg)
}
