package adb

import "github.com/sirupsen/logrus"

// defaultLogger is used by every Adb/Device in the package, the way
// zach-klippenstein/adbfs's Config.Log defaults to logrus.StandardLogger().
// There is one logger for the whole process, not one per client -- override
// it with SetLogger before constructing any Adb/Device if needed.
var defaultLogger = logrus.StandardLogger()

// SetLogger overrides the package-wide default logger used by every
// client; there is no per-client logger.
func SetLogger(l *logrus.Logger) {
	defaultLogger = l
}
