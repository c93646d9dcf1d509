package logging

import (
	"os"
	"strings"

	"github.com/2beens/weighttracker/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string

	// log file rotation, zero values fall back to the defaults below
	RotateMaxSizeMB  int
	RotateMaxBackups int
	RotateMaxAgeDays int
}

const (
	defaultRotateMaxSizeMB  = 50
	defaultRotateMaxBackups = 30
	defaultRotateMaxAgeDays = 365
)

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if params.SentryEnabled {
		err := sentry.Init(sentry.ClientOptions{
			Environment:      params.Environment,
			Dsn:              params.SentryDSN,
			TracesSampleRate: 1.0,
			ServerName:       params.SentryServerName,
		})
		if err != nil {
			logrus.Errorf("sentry.Init: %s", err)
		}

		hook := NewSentryHook([]logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		logrus.AddHook(hook)

		logrus.Infoln("sentry set up successfully")
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.LogFileName == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Println("writing logs only to STDOUT")
		return
	}

	if params.LogToStdout {
		logrus.Println("writing logs to file and STDOUT")
	}

	fileWriter := newFileWriter(params)
	if params.LogToStdout {
		logrus.SetOutput(pkg.NewCombinedWriter(os.Stdout, fileWriter))
	} else {
		logrus.SetOutput(fileWriter)
	}
}

// newFileWriter returns the rotating writer for the service log file.
// Rotated files are named in UTC and compressed.
func newFileWriter(params LoggerSetupParams) *lumberjack.Logger {
	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	return &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    orDefault(params.RotateMaxSizeMB, defaultRotateMaxSizeMB),
		MaxBackups: orDefault(params.RotateMaxBackups, defaultRotateMaxBackups),
		MaxAge:     orDefault(params.RotateMaxAgeDays, defaultRotateMaxAgeDays),
		LocalTime:  false,
		Compress:   true,
	}
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

// GetLevel maps a config level name to a logrus level, trace for unknown names.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
