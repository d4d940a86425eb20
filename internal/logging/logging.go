package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("XSYNC_DEBUG") != "" {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func Info(msg string, fields map[string]any)  { logger.WithFields(logrus.Fields(fields)).Info(msg) }
func Error(msg string, fields map[string]any) { logger.WithFields(logrus.Fields(fields)).Error(msg) }
