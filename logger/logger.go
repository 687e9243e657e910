package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logrus logger at stdout and a rotating file under
// logDir. The returned closer flushes and closes the log file.
func Setup(logDir, level string) (io.Closer, error) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating log directory")
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "yt-dataset.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, logFile))
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logFile, nil
}
