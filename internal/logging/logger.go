package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogFile is where logs go unless overridden. The terminal belongs to the UI.
const DefaultLogFile = "/tmp/remotail.log"

// Component represents different parts of the program for log tagging
type Component string

const (
	ComponentController Component = "CONTROLLER"
	ComponentWorker     Component = "WORKER"
	ComponentSSH        Component = "SSH"
	ComponentCommand    Component = "COMMAND"
	ComponentUI         Component = "UI"
	ComponentConfig     Component = "CONFIG"
)

// Logger wraps zap.Logger and hands out component loggers
type Logger struct {
	*zap.Logger
	file *os.File
}

// fileEncoder builds a compact console encoder: HH:MM:SS L caller [NAME] msg fields
func fileEncoder() zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()

	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}

	// Single letter level: D, I, W, E
	config.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		levelMap := map[zapcore.Level]string{
			zapcore.DebugLevel: "D",
			zapcore.InfoLevel:  "I",
			zapcore.WarnLevel:  "W",
			zapcore.ErrorLevel: "E",
		}
		levelStr := levelMap[level]
		if levelStr == "" {
			levelStr = "?"
		}
		enc.AppendString(levelStr)
	}

	config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		enc.AppendString(fmt.Sprintf("%s:%d", strings.TrimSuffix(file, ".go"), caller.Line))
	}

	config.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}

	return zapcore.NewConsoleEncoder(config)
}

// NewFileLogger creates a logger that appends to filePath
func NewFileLogger(filePath string, debug bool) (*Logger, error) {
	if filePath == "" {
		filePath = DefaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", filePath, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(fileEncoder(), zapcore.AddSync(file), level)

	return &Logger{
		Logger: zap.New(core, zap.AddCaller()),
		file:   file,
	}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// For returns a child logger tagged with component
func (l *Logger) For(component Component) *zap.Logger {
	return l.Logger.Named(string(component))
}

// Close flushes buffered entries and closes the log file
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
