package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	debugLog *log.Logger
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	initOnce sync.Once
)

// Options controls log destinations and rotation.
type Options struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init sets up leveled logging to stdout plus a rotated file per level.
// Safe to call more than once; only the first call takes effect.
func Init(opts Options) {
	initOnce.Do(func() {
		if opts.Dir == "" {
			opts.Dir = "logs"
		}
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			log.Fatalf("Failed to create log directory: %v", err)
		}

		infoWriter := io.MultiWriter(os.Stdout, rotatedFile(opts, "info.log"))
		warnWriter := io.MultiWriter(os.Stdout, rotatedFile(opts, "warn.log"))
		errorWriter := io.MultiWriter(os.Stderr, rotatedFile(opts, "error.log"))

		debugLog = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime)
		infoLog = log.New(infoWriter, "INFO: ", log.Ldate|log.Ltime)
		warnLog = log.New(warnWriter, "WARNING: ", log.Ldate|log.Ltime)
		errorLog = log.New(errorWriter, "ERROR: ", log.Ldate|log.Ltime)

		// Override Go's default log
		log.SetOutput(infoWriter)
	})
}

func rotatedFile(opts Options, name string) io.Writer {
	return &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, name),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
}

func getCallerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	return runtime.FuncForPC(pc).Name()
}

func output(l *log.Logger, format string, v ...interface{}) {
	if l == nil {
		// Logging before Init falls back to the default logger.
		log.Printf(format, v...)
		return
	}
	l.Printf("[%s] %s", getCallerInfo(), fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	output(debugLog, format, v...)
}

func Info(format string, v ...interface{}) {
	output(infoLog, format, v...)
}

func Warn(format string, v ...interface{}) {
	output(warnLog, format, v...)
}

func Error(format string, v ...interface{}) {
	output(errorLog, format, v...)
}
