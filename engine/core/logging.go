package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel is the minimum severity the engine logger reports.
type LogLevel log.Level

const (
	DebugLevel = LogLevel(log.DebugLevel)
	InfoLevel  = LogLevel(log.InfoLevel)
	WarnLevel  = LogLevel(log.WarnLevel)
	ErrorLevel = LogLevel(log.ErrorLevel)
	FatalLevel = LogLevel(log.FatalLevel)
)

func (l LogLevel) String() string {
	return log.Level(l).String()
}

// UnmarshalText lets a LogLevel be read from configuration, e.g. "debug" or "warn".
func (l *LogLevel) UnmarshalText(text []byte) error {
	lvl, err := log.ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = LogLevel(lvl)
	return nil
}

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Assets 📦 ",
				CallerOffset:    1,
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	return singleton
}

// SetLogLevel changes the level of the shared engine logger.
func SetLogLevel(level LogLevel) {
	getLogger().SetLevel(log.Level(level))
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
