package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RawRecord is one element of the persisted snapshot array.
// Pointer fields distinguish absent keys from zero values.
type RawRecord struct {
	SequenceID  *Int64Value `json:"sequenceId"`
	TimestampNs *Int64Value `json:"timestampNs"`
	Parts       []RawPart   `json:"parts"`

	hasParts bool
}

// RawPart is one part entry of a RawRecord.
type RawPart struct {
	Part     string       `json:"part"`
	Position *RawPosition `json:"position,omitempty"`
}

// RawPosition carries the position values of a part. A nil Values slice means
// the recorder had no data for the part in this snapshot.
type RawPosition struct {
	Values []float64 `json:"values"`
}

// HasParts reports whether the "parts" key was present when decoded.
// Records built in code report true when Parts is non-nil.
func (r RawRecord) HasParts() bool {
	return r.hasParts || r.Parts != nil
}

// UnmarshalJSON records presence of the parts key alongside the regular decode.
func (r *RawRecord) UnmarshalJSON(b []byte) error {
	type plain RawRecord
	var aux struct {
		plain
		Parts *[]RawPart `json:"parts"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawRecord(aux.plain)
	if aux.Parts != nil {
		r.Parts = *aux.Parts
		r.hasParts = true
	}
	return nil
}

// Int64Value decodes an integer encoded either as a JSON number or as a
// decimal string (protobuf JSON encodes 64-bit integers as strings).
type Int64Value int64

// UnmarshalJSON accepts 123, 123.0 and "123". Fractional or out of range
// values are rejected.
func (v *Int64Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer string %q: %w", s, err)
		}
		*v = Int64Value(n)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	if n, err := num.Int64(); err == nil {
		*v = Int64Value(n)
		return nil
	}
	f, err := num.Float64()
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", num, err)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("invalid integer %s: not a whole number in int64 range", num)
	}
	*v = Int64Value(int64(f))
	return nil
}

// Int64Ptr is a helper for building records in code.
func Int64Ptr(n int64) *Int64Value {
	v := Int64Value(n)
	return &v
}
