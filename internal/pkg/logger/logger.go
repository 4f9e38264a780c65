// Package logger provides structured JSON logging with recipient-PII redaction.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel converts a level name to a Level. Unknown names map to INFO.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes structured JSON log entries. Field values under email-like
// keys are redacted so recipient addresses never land in logs verbatim.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	redactPII bool
}

// New creates a Logger writing to out at the given minimum level.
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level, redactPII: true}
}

var std = New(os.Stderr, INFO)

// SetLevel sets the minimum level for the package-level logger.
func SetLevel(l Level) { std.level = l }

// SetOutput redirects the package-level logger, mainly for tests.
func SetOutput(w io.Writer) { std.out = w }

// SetRedactPII toggles email redaction for the package-level logger.
func SetRedactPII(r bool) { std.redactPII = r }

// Debug emits a DEBUG-level entry via the package-level logger.
func Debug(msg string, fields ...interface{}) { std.log(DEBUG, msg, fields...) }

// Info emits an INFO-level entry via the package-level logger.
func Info(msg string, fields ...interface{}) { std.log(INFO, msg, fields...) }

// Warn emits a WARN-level entry via the package-level logger.
func Warn(msg string, fields ...interface{}) { std.log(WARN, msg, fields...) }

// Error emits an ERROR-level entry via the package-level logger.
func Error(msg string, fields ...interface{}) { std.log(ERROR, msg, fields...) }

// Debug emits a DEBUG-level entry.
func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(DEBUG, msg, fields...) }

// Info emits an INFO-level entry.
func (l *Logger) Info(msg string, fields ...interface{}) { l.log(INFO, msg, fields...) }

// Warn emits a WARN-level entry.
func (l *Logger) Warn(msg string, fields ...interface{}) { l.log(WARN, msg, fields...) }

// Error emits an ERROR-level entry.
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	entry := map[string]string{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}

	// Fields arrive as alternating key/value pairs; a trailing odd value is dropped.
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redactPII {
			val = redactValue(key, val)
		}
		entry[key] = val
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}

func redactValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || key == "to" || strings.Contains(key, "recipient") {
		return RedactEmail(val)
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
