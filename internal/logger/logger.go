package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu         sync.Mutex
	out        io.Writer = os.Stdout
	minLevel             = LevelInfo
	file       *os.File
	dir        string
	currentDay string
)

// Init enables daily log files. An empty dir keeps console-only logging.
// A dir that is not already named "logs" gets a logs/ subdirectory.
func Init(logDir string) error {
	if logDir == "" {
		return nil
	}
	resolved := logDir
	if path.Base(filepath.ToSlash(logDir)) != "logs" {
		resolved = filepath.Join(logDir, "logs")
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	dir = resolved
	if err := rotateLocked(time.Now()); err != nil {
		dir = ""
		return err
	}
	return nil
}

// SetOutput replaces the console writer. Used by tests to silence output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	dir = ""
}

func Debug(format string, args ...interface{}) { write(LevelDebug, format, args...) }

func Info(format string, args ...interface{}) { write(LevelInfo, format, args...) }

func Warn(format string, args ...interface{}) { write(LevelWarn, format, args...) }

func Error(format string, args ...interface{}) { write(LevelError, format, args...) }

func write(lvl Level, format string, args ...interface{}) {
	now := time.Now()
	stamp := now.Format("2006/01/02 15:04:05")
	msg := fmt.Sprintf(format, args...)

	var label, color string
	switch lvl {
	case LevelDebug:
		color, label = "\033[36m", "[DBUG] "
	case LevelInfo:
		color, label = "\033[32m", "[INFO] "
	case LevelWarn:
		color, label = "\033[33m", "[WARN] "
	case LevelError:
		color, label = "\033[31m", "[EROR] "
	}

	mu.Lock()
	defer mu.Unlock()
	if lvl < minLevel {
		return
	}
	if dir != "" {
		if err := rotateLocked(now); err == nil && file != nil {
			_, _ = fmt.Fprintf(file, "%s %s%s\n", stamp, label, msg)
		}
	}
	_, _ = fmt.Fprintf(out, "%s %s%s\033[0m%s\n", stamp, color, label, msg)
}

func rotateLocked(t time.Time) error {
	day := t.Format("2006-01-02")
	if file != nil && currentDay == day {
		return nil
	}
	if file != nil {
		_ = file.Close()
		file = nil
	}
	f, err := os.OpenFile(filepath.Join(dir, day+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	file = f
	currentDay = day
	return nil
}
