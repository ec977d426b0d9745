// Package logger provides the prefixed, colored console loggers used by
// every component.
package logger

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

const resetColor = "\033[0m"

var ErrNilWriter = errors.New("nil log writer")

// Logger writes leveled messages tagged with a component prefix.
type Logger struct {
	zl zerolog.Logger
}

// New returns a logger whose lines carry prefix rendered in color.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("%s[%s]%s %v", color, prefix, resetColor, i)
		},
	}
	return &Logger{zl: zerolog.New(output).With().Timestamp().Logger()}, nil
}

// Info logs routine events.
func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Warning logs recoverable problems.
func (l *Logger) Warning(msg string) {
	l.zl.Warn().Msg(msg)
}

// Error logs failures.
func (l *Logger) Error(msg string) {
	l.zl.Error().Msg(msg)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}
