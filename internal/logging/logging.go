package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "voxel-render",
			// Report the caller of the wrappers below, not the wrappers
			CallerOffset: 1,
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel parses one of debug, info, warn, error, fatal
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects the process logger
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// Level returns the active level name
func Level() string {
	return get().GetLevel().String()
}

func Debug(msg string, keyvals ...any) {
	get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	get().Error(msg, keyvals...)
}

// Fatal logs and exits with status 1
func Fatal(msg string, keyvals ...any) {
	get().Fatal(msg, keyvals...)
}
