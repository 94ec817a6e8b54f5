package domain

import (
	"reflect"
	"testing"
)

func testTimeline() *Timeline {
	entries := []Snapshot{
		{SequenceID: 10, TimestampNs: 3_000_000_000, Parts: map[string][]float64{"ARM": {1, 2}}},
		{SequenceID: 11, TimestampNs: 1_000_000_000, Parts: map[string][]float64{"ARM": {3, 4}, "BLADE": {5}}},
		{SequenceID: 10, TimestampNs: 2_500_000_000, Parts: map[string][]float64{}},
	}
	return NewTimeline(entries, []string{"ARM", "BLADE"}, map[string]int{"ARM": 2, "BLADE": 1}, 5)
}

func TestTimeline_Lookups(t *testing.T) {
	tl := testTimeline()

	if tl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tl.Len())
	}
	if tl.DownsampleFactor() != 5 {
		t.Errorf("DownsampleFactor() = %d, want 5", tl.DownsampleFactor())
	}

	if _, ok := tl.ByIndex(-1); ok {
		t.Error("ByIndex(-1) ok = true")
	}
	if _, ok := tl.ByIndex(3); ok {
		t.Error("ByIndex(3) ok = true")
	}

	snap, idx, ok := tl.BySequenceID(10)
	if !ok || idx != 0 || snap.TimestampNs != 3_000_000_000 {
		t.Errorf("BySequenceID(10) = %v, %d, %v; want first entry", snap, idx, ok)
	}
	if _, idx, ok := tl.BySequenceID(99); ok || idx != -1 {
		t.Errorf("BySequenceID(99) = %d, %v; want -1, false", idx, ok)
	}

	if got := tl.DuplicateSequenceIDs(); !reflect.DeepEqual(got, []int64{10}) {
		t.Errorf("DuplicateSequenceIDs() = %v, want [10]", got)
	}
	if got := tl.SequenceIDs(); !reflect.DeepEqual(got, []int64{10, 11, 10}) {
		t.Errorf("SequenceIDs() = %v", got)
	}
}

func TestTimeline_Parts(t *testing.T) {
	tl := testTimeline()

	if got := tl.PartNames(); !reflect.DeepEqual(got, []string{"ARM", "BLADE"}) {
		t.Errorf("PartNames() = %v", got)
	}
	if tl.PartDOF("BLADE") != 1 || tl.PartDOF("NOPE") != 0 {
		t.Errorf("PartDOF mismatch")
	}

	dofs := tl.PartDOFs()
	dofs["ARM"] = 99
	if tl.PartDOF("ARM") != 2 {
		t.Error("PartDOFs() returned internal map")
	}

	got := tl.PositionsForPart("ARM")
	want := [][]float64{{1, 2}, {3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PositionsForPart(ARM) = %v, want %v", got, want)
	}
}

func TestTimeline_Info(t *testing.T) {
	info := testTimeline().Info()

	want := TimelineInfo{
		TotalEntries:    3,
		MinSequenceID:   10,
		MaxSequenceID:   11,
		MinTimestampNs:  1_000_000_000,
		MaxTimestampNs:  3_000_000_000,
		DurationSeconds: 2,
	}
	if info != want {
		t.Errorf("Info() = %+v, want %+v", info, want)
	}

	if empty := NewTimeline(nil, nil, nil, 0).Info(); empty != (TimelineInfo{}) {
		t.Errorf("empty Info() = %+v, want zero", empty)
	}
}

func TestSeekOutOfRangeError(t *testing.T) {
	idxErr := &SeekOutOfRangeError{Index: 12, Len: 10, Err: ErrIndexOutOfRange}
	if idxErr.Error() != "seek: index 12 outside [0, 10)" {
		t.Errorf("Error() = %q", idxErr.Error())
	}

	seqErr := &SeekOutOfRangeError{Index: -1, SequenceID: 5, Len: 10, Err: ErrSequenceNotFound}
	if seqErr.Error() != "seek: sequence id 5 not found" {
		t.Errorf("Error() = %q", seqErr.Error())
	}
}
