package pipeline

import (
	"io"

	"github.com/sirupsen/logrus"
)

// nullLog returns a log entry that discards everything, used by tests that
// construct pipeline structs directly instead of going through their
// build* constructors.
func nullLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
