package tramagrid

import "go.uber.org/zap"

// nopLogger is the logger charts use unless WithLogger is given: library
// code stays silent by default.
var nopLogger = zap.NewNop()

// loggerOrNop returns l, or a logger that discards everything when l is nil.
func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return nopLogger
	}
	return l
}
