package logx

import (
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

// ParseLevel maps a textual level to a Level; unknown values fall back to warn.
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

// messageLimit caps message and string field size unless verbose is on.
const messageLimit = 2 * 1024

var (
	mu       sync.RWMutex
	minLevel           = LevelWarn
	out      io.Writer = io.Discard
	secrets            = make([]string, 0)
	verbose  bool
)

// SetOutput sets the destination for logs. A nil writer discards output.
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

// SetVerbose disables truncation of large messages and fields.
func SetVerbose(v bool) { mu.Lock(); verbose = v; mu.Unlock() }

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

// ToFile appends JSON lines to path and routes all logging there.
// The returned closer restores the discard sink.
func ToFile(path string, level Level) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetOutput(f)
	SetMinLevel(level)
	return closerFunc(func() error {
		SetOutput(nil)
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// Debugf logs a debug message.
func Debugf(format string, args ...any) { log(LevelDebug, fmt.Sprintf(format, args...), nil) }

// Infof logs an info message.
func Infof(format string, args ...any) { log(LevelInfo, fmt.Sprintf(format, args...), nil) }

// Warnf logs a warning message.
func Warnf(format string, args ...any) { log(LevelWarn, fmt.Sprintf(format, args...), nil) }

// Errorf logs an error message.
func Errorf(format string, args ...any) { log(LevelError, fmt.Sprintf(format, args...), nil) }

// Infow logs msg with alternating key/value pairs as fields.
func Infow(msg string, kv ...any) { log(LevelInfo, msg, fieldsOf(kv)) }

// Debugw logs msg at debug level with key/value fields.
func Debugw(msg string, kv ...any) { log(LevelDebug, msg, fieldsOf(kv)) }

// Warnw logs msg at warn level with key/value fields.
func Warnw(msg string, kv ...any) { log(LevelWarn, msg, fieldsOf(kv)) }

// Errorw logs msg at error level with key/value fields.
func Errorw(msg string, kv ...any) { log(LevelError, msg, fieldsOf(kv)) }

func fieldsOf(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	fields := make(map[string]any, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fields[key] = "(missing)"
			break
		}
		switch v := kv[i+1].(type) {
		case error:
			fields[key] = v.Error()
		default:
			fields[key] = v
		}
	}
	return fields
}

func log(lvl Level, msg string, fields map[string]any) {
	mu.RLock()
	w := out
	mu.RUnlock()
	_ = emit(w, lvl, msg, fields)
}

type entry struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

func emit(w io.Writer, lvl Level, msg string, fields map[string]any) error {
	mu.RLock()
	ml := minLevel
	v := verbose
	mu.RUnlock()
	if lvl < ml {
		return nil
	}
	msg = redact(msg)
	if !v {
		msg = truncate(msg, messageLimit)
	}
	for k, val := range fields {
		if s, ok := val.(string); ok {
			s = redact(s)
			if !v {
				s = truncate(s, messageLimit)
			}
			fields[k] = s
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
	for _, sec := range secrets {
		s = strings.ReplaceAll(s, sec, "[REDACTED]")
	}
	return s
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	// keep the tail for context
	suffix := "… [truncated]"
	if limit > len(suffix)+10 {
		head := s[:limit-len(suffix)-10]
		tail := s[len(s)-10:]
		return head + suffix + tail
	}
	return s[:limit]
}
