package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the replay domain.
// They are returned by the public API and can be checked with errors.Is.
var (
	// ErrNotLoaded is returned when timeline data is requested before parsing.
	ErrNotLoaded = errors.New("jointreplay: timeline not loaded")

	// ErrEmptyTimeline is returned when playback is requested on a timeline with no entries.
	ErrEmptyTimeline = errors.New("jointreplay: empty timeline")

	// ErrInvalidDownsample is returned when the downsample factor is below 1.
	ErrInvalidDownsample = errors.New("jointreplay: downsample factor must be >= 1")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("jointreplay: invalid configuration")

	// ErrIndexOutOfRange is wrapped by SeekOutOfRangeError for index seeks.
	ErrIndexOutOfRange = errors.New("jointreplay: index out of range")

	// ErrSequenceNotFound is wrapped by SeekOutOfRangeError for sequence id seeks.
	ErrSequenceNotFound = errors.New("jointreplay: sequence id not found")
)

// DataSourceError reports an input that is missing, unreadable, or not a
// well-formed record array.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// MalformedRecordError reports a record missing a required field.
// Index is the position in the raw (not downsampled) record array.
type MalformedRecordError struct {
	Index int
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: missing required field %q", e.Index, e.Field)
}

// InconsistentDOFError reports a part whose value count differs from the count
// seen at its first occurrence in the same timeline.
type InconsistentDOFError struct {
	Index    int
	Part     string
	Expected int
	Got      int
}

func (e *InconsistentDOFError) Error() string {
	return fmt.Sprintf("record %d: part %s has %d values, first occurrence had %d",
		e.Index, e.Part, e.Got, e.Expected)
}

// SeekOutOfRangeError reports a rejected seek. The controller state is unchanged.
type SeekOutOfRangeError struct {
	Index      int
	SequenceID int64
	Len        int
	Err        error
}

func (e *SeekOutOfRangeError) Error() string {
	if errors.Is(e.Err, ErrSequenceNotFound) {
		return fmt.Sprintf("seek: sequence id %d not found", e.SequenceID)
	}
	return fmt.Sprintf("seek: index %d outside [0, %d)", e.Index, e.Len)
}

func (e *SeekOutOfRangeError) Unwrap() error { return e.Err }
