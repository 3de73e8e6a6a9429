package logger

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logrus *logrus.Logger

// Init sets up the process-wide JSON logger. An empty logfile sends
// everything to stdout, which is what the tests use.
func Init(logfile string) {
	logger := logrus.New()

	logger.SetReportCaller(true)

	logger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint: true,
	})

	if logfile == "" {
		logger.Out = os.Stdout
	} else {
		logger.Out = &lumberjack.Logger{
			Filename:   logfile,
			MaxSize:    500,
			MaxBackups: 20,
			MaxAge:     30,
			Compress:   true,
		}
	}

	logger.SetLevel(logrus.DebugLevel)
	Logrus = logger
}

func SetLogLevel(runMode string) {
	modeLevel := logrus.InfoLevel

	switch runMode {
	case "debug":
		modeLevel = logrus.DebugLevel
	case "fatal":
		modeLevel = logrus.FatalLevel
	case "error":
		modeLevel = logrus.ErrorLevel
	case "warn":
		modeLevel = logrus.WarnLevel
	default:
		modeLevel = logrus.InfoLevel
	}

	Logrus.SetLevel(modeLevel)
}
