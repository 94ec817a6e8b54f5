// Package logtest provides a ports.Logger that captures messages for tests.
package logtest

import (
	"sync"

	"github.com/bft-labs/jointreplay/internal/ports"
)

// Entry is one message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Recorder keeps every message in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Debug(msg string, fields ...ports.Field) { r.add("debug", msg, fields) }
func (r *Recorder) Info(msg string, fields ...ports.Field)  { r.add("info", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...ports.Field)  { r.add("warn", msg, fields) }
func (r *Recorder) Error(msg string, fields ...ports.Field) { r.add("error", msg, fields) }

func (r *Recorder) add(level, msg string, fields []ports.Field) {
	e := Entry{Level: level, Message: msg, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		e.Fields[f.Key] = f.Value
	}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

// Entries returns a copy of the captured messages, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns the captured messages with the given level and text.
func (r *Recorder) Find(level, msg string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}
