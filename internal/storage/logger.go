package storage

import (
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

var _ badger.Logger = (*badgerLogger)(nil)

// badgerLogger forwards badger's printf-style logging to zap.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func newBadgerLogger(logger *zap.Logger) *badgerLogger {
	return &badgerLogger{sugar: logger.Named("badger").WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// badger terminates its format strings with a newline
func trim(format string) string {
	return strings.TrimSuffix(format, "\n")
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.sugar.Errorf(trim(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.sugar.Warnf(trim(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.sugar.Infof(trim(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(trim(format), args...)
}
