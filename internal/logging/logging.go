// Package logging holds the process-wide diagnostic logger. Report output
// and user-facing errors are written to explicit streams, not through here.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until Init is called, so packages may log freely in tests.
var Logger = zap.NewNop().Sugar()

// Init builds a console logger writing to w. Debug enables debug-level
// output; otherwise only warnings and errors are shown.
func Init(debug bool, w io.Writer) {
	level := zapcore.WarnLevel
	cfg := zap.NewProductionEncoderConfig()
	if debug {
		level = zapcore.DebugLevel
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	Logger = zap.New(core).Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
