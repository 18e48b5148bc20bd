// Package logging is a minimal leveled logger writing to stderr.
package logging

import (
	"io"
	"log"
	"os"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelNone
)

var (
	debug   *log.Logger
	info    *log.Logger
	warning *log.Logger
	errlog  *log.Logger
)

func init() {
	flags := log.Ldate | log.Ltime | log.LUTC
	debug = log.New(io.Discard, "D ", flags)
	info = log.New(io.Discard, "I ", flags)
	warning = log.New(io.Discard, "W ", flags)
	errlog = log.New(io.Discard, "E ", flags)

	SetLevel(LevelWarning)
}

// SetLevel enables output for the given level and everything above it.
func SetLevel(l Level) {
	for lvl, logger := range []*log.Logger{debug, info, warning, errlog} {
		if Level(lvl) >= l {
			logger.SetOutput(os.Stderr)
		} else {
			logger.SetOutput(io.Discard)
		}
	}
}

func Debug(msg string, v ...interface{}) {
	debug.Printf(msg, v...)
}

func Info(msg string, v ...interface{}) {
	info.Printf(msg, v...)
}

func Warning(msg string, v ...interface{}) {
	warning.Printf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	errlog.Printf(msg, v...)
}
