// Package logger configures the process-wide logrus logger. Lines go to stdout and are
// appended to LogFilePath; the most recent ones are also kept in memory so the window
// can show them as on-screen notices.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogFilePath is the log file, relative to the working directory (project root when run via go run ./cmd/tour).
const LogFilePath = "logs/tour.txt"

// recentCapacity bounds the in-memory history.
const recentCapacity = 200

// Log is the global logger. It is usable before Init (text to stderr, info level) so that
// packages and tests can log without setup.
var Log = logrus.New()

// History is the in-memory tail of everything logged through Log after Init.
var History = NewRecent(recentCapacity)

var file *os.File

// Init configures Log from the environment: LOG_LEVEL (default "info") and LOG_FORMAT
// ("json" or text). It must be called once from main, after the .env file is loaded.
// A log file that cannot be opened is reported and skipped.
func Init() {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if f, err := openLogFile(); err == nil {
		file = f
		out = io.MultiWriter(os.Stdout, f)
	} else {
		defer Log.WithError(err).Warn("log file unavailable, logging to stdout only")
	}
	Log.SetOutput(out)
	Log.AddHook(History)
}

// Close flushes and closes the log file opened by Init.
func Close() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

func openLogFile() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(LogFilePath), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(LogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// For returns an entry tagged with the component name, e.g. For("mapview").
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}

// Recent is a logrus hook that keeps the last lines logged at info level or above.
type Recent struct {
	mu    sync.Mutex
	cap   int
	lines []Line
}

// Line is one remembered log message.
type Line struct {
	Level   logrus.Level
	Message string
}

// NewRecent returns a hook holding at most capacity lines.
func NewRecent(capacity int) *Recent {
	if capacity <= 0 {
		capacity = 1
	}
	return &Recent{cap: capacity}
}

// Levels implements logrus.Hook.
func (r *Recent) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel}
}

// Fire implements logrus.Hook.
func (r *Recent) Fire(e *logrus.Entry) error {
	msg := e.Message
	if c, ok := e.Data["component"].(string); ok && c != "" {
		msg = c + ": " + msg
	}
	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		msg += " (" + err.Error() + ")"
	}
	r.mu.Lock()
	r.lines = append(r.lines, Line{Level: e.Level, Message: msg})
	if over := len(r.lines) - r.cap; over > 0 {
		r.lines = append(r.lines[:0], r.lines[over:]...)
	}
	r.mu.Unlock()
	return nil
}

// Lines returns a copy of the remembered lines, oldest first.
func (r *Recent) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// Last returns up to n of the newest lines at or above level (lower logrus values are more severe).
func (r *Recent) Last(n int, level logrus.Level) []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Line
	for i := len(r.lines) - 1; i >= 0 && len(out) < n; i-- {
		if r.lines[i].Level <= level {
			out = append(out, r.lines[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
