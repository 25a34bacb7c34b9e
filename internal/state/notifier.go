package state

import (
	"sync"

	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"go.uber.org/zap"
)

// Notifier surfaces the outcome of user actions, the way a toast would
type Notifier interface {
	Success(message string)
	// Error reports a failure. summary names the action, detail is the
	// normalized message of the error.
	Error(summary, detail string)
}

// LogNotifier writes notifications to the logger
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Success(message string) {
	n.log.Info(message)
}

func (n *LogNotifier) Error(summary, detail string) {
	n.log.Warn(summary, zap.String("detail", detail))
}

// Notification is one recorded notification
type Notification struct {
	Success bool
	Summary string
	Detail  string
}

// Recorder keeps every notification in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Success: true, Summary: message})
}

func (r *Recorder) Error(summary, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Summary: summary, Detail: detail})
}

// All returns a copy of the recorded notifications in order
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Errors returns only the failure notifications
func (r *Recorder) Errors() []Notification {
	var out []Notification
	for _, n := range r.All() {
		if !n.Success {
			out = append(out, n)
		}
	}
	return out
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string, string) {}
