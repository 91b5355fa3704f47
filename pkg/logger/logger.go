package logger

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level, format string) *log.Logger {
	return NewWithOutput(level, format, os.Stdout)
}

func NewWithOutput(level, format string, out io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(out)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)

	if format == FormatText {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&log.JSONFormatter{
			FieldMap: log.FieldMap{log.FieldKeyTime: "timestamp"},
		})
	}
	return l
}
