// Package notify carries shopper-facing messages out of the cart core. The core only
// emits (message, severity) pairs; rendering them is up to the adapter.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
)

// Notifier is fire-and-forget; the core never inspects a result.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, severity Severity)

func (f NotifierFunc) Notify(message string, severity Severity) {
	f(message, severity)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(string, Severity) {})

// Notice is one recorded notification.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Recorder keeps notifications in memory so a request handler can return them to the UI.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity})
	r.mu.Unlock()
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Logger writes notifications to a zap logger.
type Logger struct {
	logger *zap.SugaredLogger
}

func NewLogger(logger *zap.SugaredLogger) *Logger {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Logger{logger: logger}
}

func (l *Logger) Notify(message string, severity Severity) {
	if severity == Error {
		l.logger.Warnw("notify", "severity", severity, "message", message)
		return
	}
	l.logger.Infow("notify", "severity", severity, "message", message)
}

// Printer writes notifications as plain lines, for terminal clients.
type Printer struct {
	W io.Writer
}

func (p Printer) Notify(message string, severity Severity) {
	marker := "ok"
	if severity == Error {
		marker = "error"
	}
	fmt.Fprintf(p.W, "[%s] %s\n", marker, message)
}

// Tee fans a notification out to several notifiers.
func Tee(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(message string, severity Severity) {
		for _, n := range notifiers {
			n.Notify(message, severity)
		}
	})
}
