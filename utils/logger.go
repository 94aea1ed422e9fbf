package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger provides structured, leveled logging throughout the application.
// Console output is colored; when a log file is attached, every line is also
// appended there in plain text so each run leaves a reviewable trail.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	err  io.Writer
	file *os.File
}

// NewLogger creates a Logger writing to stdout/stderr only.
func NewLogger() *Logger {
	return &Logger{out: os.Stdout, err: os.Stderr}
}

// NewFileLogger creates a Logger that also appends to a per-run log file
// under dir (log_YYYYMMDD_HHMM.txt), opened with a banner header.
func NewFileLogger(dir, header string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}

	name := fmt.Sprintf("log_%s.txt", time.Now().Format("20060102_1504"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}

	banner := strings.Repeat("=", 70)
	fmt.Fprintf(f, "%s\n%s\n%s\nFecha de inicio: %s\n%s\n\n",
		banner, header, banner, time.Now().Format("2006-01-02 15:04:05"), banner)

	return &Logger{out: os.Stdout, err: os.Stderr, file: f}, nil
}

// Close releases the attached log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) write(w io.Writer, level, color, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "[%s] \033[%sm%-5s\033[0m %s\n", ts, color, level, msg)
	if l.file != nil {
		fmt.Fprintf(l.file, "[%s] [%s] %s\n", ts, level, msg)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.write(l.out, "INFO", "32", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.write(l.out, "WARN", "33", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.write(l.err, "ERROR", "31", fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	l.write(l.out, "DEBUG", "36", fmt.Sprintf(format, args...))
}

// Section emits a separator block marking the start of a pipeline stage.
func (l *Logger) Section(title string) {
	sep := strings.Repeat("-", 50)
	l.Info("%s", sep)
	l.Info("%s", title)
	l.Info("%s", sep)
}
