package domain

import (
	"encoding/json"
	"testing"
)

func TestInt64Value_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{`123`, 123, false},
		{`"1700000000123456789"`, 1700000000123456789, false},
		{`42.0`, 42, false},
		{`-7`, -7, false},
		{`1e3`, 1000, false},
		{`1.5`, 0, true},
		{`1e20`, 0, true},
		{`-1e19`, 0, true},
		{`"1.5"`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v Int64Value
			err := json.Unmarshal([]byte(tt.in), &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && int64(v) != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, v, tt.want)
			}
		})
	}
}

func TestRawRecord_UnmarshalJSON(t *testing.T) {
	var withParts RawRecord
	if err := json.Unmarshal([]byte(`{"sequenceId":1,"timestampNs":"2","parts":[]}`), &withParts); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !withParts.HasParts() {
		t.Error("HasParts() = false for empty parts array, want true")
	}
	if withParts.SequenceID == nil || *withParts.SequenceID != 1 {
		t.Errorf("SequenceID = %v, want 1", withParts.SequenceID)
	}
	if withParts.TimestampNs == nil || *withParts.TimestampNs != 2 {
		t.Errorf("TimestampNs = %v, want 2", withParts.TimestampNs)
	}

	var noParts RawRecord
	if err := json.Unmarshal([]byte(`{"sequenceId":1,"timestampNs":2}`), &noParts); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if noParts.HasParts() {
		t.Error("HasParts() = true without parts key, want false")
	}

	var missing RawRecord
	if err := json.Unmarshal([]byte(`{"parts":[{"part":"ARM","position":{"values":[1.5]}}]}`), &missing); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if missing.SequenceID != nil || missing.TimestampNs != nil {
		t.Error("absent ids should decode as nil")
	}
	if len(missing.Parts) != 1 || missing.Parts[0].Position.Values[0] != 1.5 {
		t.Errorf("Parts = %+v", missing.Parts)
	}
}
