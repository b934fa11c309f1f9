package logsvc

import (
	"fmt"
	"sync"

	"github.com/CovEducation/Website-sub000/core"
)

// Entry is a message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Args    []interface{}
}

// Recorder keeps log entries in memory, for tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return new(Recorder)
}

func (r *Recorder) record(level, msg string, args []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg, Args: args})
}

func (r *Recorder) Entries(level ...string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if len(level) == 0 || e.Level == level[0] {
			entries = append(entries, e)
		}
	}
	return entries
}

func (r *Recorder) Debug(msg string, args ...interface{}) { r.record("debug", msg, args) }
func (r *Recorder) Info(msg string, args ...interface{})  { r.record("info", msg, args) }
func (r *Recorder) Warn(msg string, args ...interface{})  { r.record("warn", msg, args) }
func (r *Recorder) Error(msg string, args ...interface{}) { r.record("error", msg, args) }

func (r *Recorder) Fatal(msg string, args ...interface{}) {
	r.record("fatal", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}
