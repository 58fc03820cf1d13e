package logging

import (
	"io"
	"os"
	"strings"

	"alcyxob/workout-tracker/internal/config"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the package-level logrus logger from the log config section.
// It returns a closer for the rotating file, or a no-op closer when logging to stdout only.
func Setup(cfg config.LogConfig) io.Closer {
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(GetLevel(cfg.Level))

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}
	}

	fileName := cfg.File
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		LocalTime:  false, // use UTC in backup names
		Compress:   true,
	}

	if cfg.Stdout {
		log.SetOutput(io.MultiWriter(os.Stdout, lumberJackLogger))
		log.Infof("writing logs to %s and stdout", fileName)
	} else {
		log.SetOutput(lumberJackLogger)
	}
	return lumberJackLogger
}

// GetLevel parses a level name, falling back to info for unknown values.
func GetLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
