package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "debug"
	}
}

// ParseLevel maps a level name to a Level. Unknown names yield LevelWarn.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

var (
	mu       sync.RWMutex
	minLevel           = LevelWarn
	out      io.Writer = io.Discard
	secrets            = make([]string, 0)
	verbose  bool
)

// SetOutput sets the destination for logs. A nil writer discards.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetMinLevel sets the minimum level to emit.
func SetMinLevel(l Level) { mu.Lock(); minLevel = l; mu.Unlock() }

// SetVerbose toggles verbose output (no truncation of large fields/messages).
func SetVerbose(v bool) { mu.Lock(); verbose = v; mu.Unlock() }

// Verbose returns whether verbose output is enabled.
func Verbose() bool { mu.RLock(); defer mu.RUnlock(); return verbose }

// RegisterSecret adds a string to be redacted in outputs.
func RegisterSecret(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	mu.Lock()
	secrets = append(secrets, s)
	mu.Unlock()
}

func currentOutput() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// Fields are structured key/value pairs attached to an entry.
type Fields map[string]any

// Logger emits entries carrying a fixed set of fields.
type Logger struct {
	fields Fields
}

// With returns a logger that adds fields to every entry.
func With(fields Fields) Logger {
	return Logger{fields: fields}
}

// With returns a copy of l extended with fields; later keys win.
func (l Logger) With(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return Logger{fields: merged}
}

func (l Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

func (l Logger) log(lvl Level, format string, args ...any) {
	var fields Fields
	if len(l.fields) > 0 {
		// emit rewrites string fields in place
		fields = make(Fields, len(l.fields))
		for k, v := range l.fields {
			fields[k] = v
		}
	}
	_ = emit(currentOutput(), lvl, fmt.Sprintf(format, args...), fields)
}

// StdlogWriter wraps writes as structured JSON lines at a fixed level.
// It applies redaction and optional truncation when verbose is disabled.
func StdlogWriter(level Level, w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	return &stdlogWriter{level: level, w: w}
}

type stdlogWriter struct {
	level Level
	w     io.Writer
}

func (sw *stdlogWriter) Write(p []byte) (int, error) {
	lines := bytes.Split(p, []byte("\n"))
	written := 0
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if err := emit(sw.w, sw.level, string(line), nil); err != nil {
			return written, err
		}
		written += len(line) + 1
	}
	return written, nil
}

// Debugf logs a debug message.
func Debugf(format string, args ...any) { Logger{}.Debugf(format, args...) }

// Infof logs an info message.
func Infof(format string, args ...any) { Logger{}.Infof(format, args...) }

// Warnf logs a warning message.
func Warnf(format string, args ...any) { Logger{}.Warnf(format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...any) { Logger{}.Errorf(format, args...) }

type entry struct {
	TS     string `json:"ts"`
	Level  string `json:"level"`
	Msg    string `json:"msg"`
	Fields Fields `json:"fields,omitempty"`
}

func emit(w io.Writer, lvl Level, msg string, fields Fields) error {
	mu.RLock()
	ml := minLevel
	v := verbose
	mu.RUnlock()
	if lvl < ml {
		return nil
	}
	msg = redact(msg)
	if !v {
		msg = truncate(msg, 2*1024)
	}
	for k, val := range fields {
		switch x := val.(type) {
		case string:
			s := redact(x)
			if !v {
				s = truncate(s, 2*1024)
			}
			fields[k] = s
		case error:
			fields[k] = redact(x.Error())
		}
	}
	e := entry{
		TS:     time.Now().Format(time.RFC3339Nano),
		Level:  lvl.String(),
		Msg:    msg,
		Fields: fields,
	}
	b, err := json.Marshal(e)
	if err != nil {
		_, err2 := io.WriteString(w, msg+"\n")
		return err2
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func redact(s string) string {
	mu.RLock()
	defer mu.RUnlock()
	if len(secrets) == 0 {
		return s
	}
	out := s
	for _, sec := range secrets {
		out = strings.ReplaceAll(out, sec, "[REDACTED]")
	}
	return out
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	// keep the last 10 bytes for context
	suffix := "… [truncated]"
	if limit > len(suffix)+10 {
		head := s[:limit-len(suffix)-10]
		tail := s[len(s)-10:]
		return head + suffix + tail
	}
	return s[:limit]
}
