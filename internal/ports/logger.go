package ports

import "time"

// Logger is the structured logging port. The CLI backs it with zerolog;
// library users get a discarding logger unless they pass their own.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field            { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }
func Any(key string, value interface{}) Field        { return Field{Key: key, Value: value} }

// Err attaches err under the "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Index is the timeline position of a frame.
func Index(i int) Field {
	return Field{Key: "index", Value: i}
}

// SequenceID is the recorder's sequence number of a snapshot.
func SequenceID(id int64) Field {
	return Field{Key: "sequence_id", Value: id}
}

// Part names a recorded part.
func Part(name string) Field {
	return Field{Key: "part", Value: name}
}
