// Package logging builds the shared logrus logger for both cmd entrypoints,
// mirroring the teacher's internal/logging init-then-log pattern
// (cmd/server/main.go calls logging.SetupBaseLogger() from init()).
package logging

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// redactedFields are the structured log-field keys whose values are blanked
// before a line is written, since several of them are secrets or decrypted
// user data. Only fields with these exact keys are blanked; a logged error's
// formatted text is written as it is.
var redactedFields = []string{"secret", "enc_secret", "enc_sub_url", "sub_url", "authorization"}

// redactHook blanks sensitive fields before logrus renders the entry.
type redactHook struct{}

func (redactHook) Levels() []logrus.Level { return logrus.AllLevels }

func (redactHook) Fire(entry *logrus.Entry) error {
	for _, field := range redactedFields {
		if _, ok := entry.Data[field]; ok {
			entry.Data[field] = "[redacted]"
		}
	}
	return nil
}

// SetupBaseLogger configures the package-global logrus logger: a text
// formatter to stderr in debug mode, or JSON to a rotating file (and nothing
// to stderr) in release mode. release is read from the CONVERTOR_RELEASE env var so both
// cmd/convertor-server and cmd/convertor-cli share one code path.
func SetupBaseLogger() {
	logrus.AddHook(redactHook{})
	logrus.SetLevel(logrus.InfoLevel)

	if os.Getenv("CONVERTOR_RELEASE") == "" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetOutput(os.Stderr)
		return
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	writer := &lumberjack.Logger{
		Filename:   logFilePath(),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	logrus.SetOutput(writer)
}

// logFilePath resolves the rotating log file location the same way §6
// resolves the config path: $HOME/.convertor/convertor.log, falling back to
// the working directory if HOME is unset.
func logFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "convertor.log")
	}
	return filepath.Join(home, ".convertor", "convertor.log")
}

// WithRequestID returns a logrus.Fields map pre-seeded with the request id,
// the shape every gin middleware log line in this module starts from.
func WithRequestID(requestID string) logrus.Fields {
	return logrus.Fields{"request_id": requestID}
}
