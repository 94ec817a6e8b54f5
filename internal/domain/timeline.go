package domain

import "sort"

// Snapshot is one instant of recorded robot state.
type Snapshot struct {
	SequenceID  int64
	TimestampNs int64

	// Parts maps a part name to its position values, one per degree of freedom.
	Parts map[string][]float64
}

// TimelineInfo summarizes a timeline.
type TimelineInfo struct {
	TotalEntries    int     `json:"total_entries"`
	MinSequenceID   int64   `json:"min_sequence_id"`
	MaxSequenceID   int64   `json:"max_sequence_id"`
	MinTimestampNs  int64   `json:"min_timestamp_ns"`
	MaxTimestampNs  int64   `json:"max_timestamp_ns"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Timeline is the ordered, immutable sequence of snapshots produced by parsing.
// It is safe for concurrent reads.
type Timeline struct {
	entries    []Snapshot
	partOrder  []string
	partDOF    map[string]int
	downsample int
}

// NewTimeline freezes entries into a Timeline. partOrder lists part names in
// first-occurrence order and partDOF their value counts. The caller must not
// modify the arguments afterwards.
func NewTimeline(entries []Snapshot, partOrder []string, partDOF map[string]int, downsample int) *Timeline {
	if partDOF == nil {
		partDOF = map[string]int{}
	}
	if downsample < 1 {
		downsample = 1
	}
	return &Timeline{
		entries:    entries,
		partOrder:  partOrder,
		partDOF:    partDOF,
		downsample: downsample,
	}
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// DownsampleFactor returns the stride used when the timeline was parsed.
func (t *Timeline) DownsampleFactor() int {
	return t.downsample
}

// ByIndex returns the entry at index i. ok is false outside [0, Len()).
func (t *Timeline) ByIndex(i int) (Snapshot, bool) {
	if i < 0 || i >= len(t.entries) {
		return Snapshot{}, false
	}
	return t.entries[i], true
}

// BySequenceID returns the first entry carrying the given sequence id and its index.
func (t *Timeline) BySequenceID(id int64) (Snapshot, int, bool) {
	i := t.IndexOfSequenceID(id)
	if i < 0 {
		return Snapshot{}, -1, false
	}
	return t.entries[i], i, true
}

// IndexOfSequenceID returns the index of the first entry with the given
// sequence id, or -1.
func (t *Timeline) IndexOfSequenceID(id int64) int {
	for i := range t.entries {
		if t.entries[i].SequenceID == id {
			return i
		}
	}
	return -1
}

// SequenceIDs returns all sequence ids in timeline order.
func (t *Timeline) SequenceIDs() []int64 {
	ids := make([]int64, len(t.entries))
	for i := range t.entries {
		ids[i] = t.entries[i].SequenceID
	}
	return ids
}

// PartNames returns part names in order of first occurrence.
func (t *Timeline) PartNames() []string {
	return append([]string(nil), t.partOrder...)
}

// PartDOF returns the value count for a part, or 0 if the part never occurs.
func (t *Timeline) PartDOF(part string) int {
	return t.partDOF[part]
}

// PartDOFs returns a copy of the per-part value counts.
func (t *Timeline) PartDOFs() map[string]int {
	out := make(map[string]int, len(t.partDOF))
	for k, v := range t.partDOF {
		out[k] = v
	}
	return out
}

// PositionsForPart returns the position vectors of a part across all entries
// that contain it.
func (t *Timeline) PositionsForPart(part string) [][]float64 {
	var out [][]float64
	for i := range t.entries {
		if v, ok := t.entries[i].Parts[part]; ok {
			out = append(out, v)
		}
	}
	return out
}

// DuplicateSequenceIDs returns sequence ids that occur more than once, sorted.
// Lookups resolve duplicates to the first entry.
func (t *Timeline) DuplicateSequenceIDs() []int64 {
	seen := make(map[int64]int, len(t.entries))
	for i := range t.entries {
		seen[t.entries[i].SequenceID]++
	}
	var dups []int64
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}

// Info returns summary information. An empty timeline yields a zero TimelineInfo.
func (t *Timeline) Info() TimelineInfo {
	if len(t.entries) == 0 {
		return TimelineInfo{}
	}
	first := t.entries[0]
	info := TimelineInfo{
		TotalEntries:   len(t.entries),
		MinSequenceID:  first.SequenceID,
		MaxSequenceID:  first.SequenceID,
		MinTimestampNs: first.TimestampNs,
		MaxTimestampNs: first.TimestampNs,
	}
	for _, e := range t.entries[1:] {
		if e.SequenceID < info.MinSequenceID {
			info.MinSequenceID = e.SequenceID
		}
		if e.SequenceID > info.MaxSequenceID {
			info.MaxSequenceID = e.SequenceID
		}
		if e.TimestampNs < info.MinTimestampNs {
			info.MinTimestampNs = e.TimestampNs
		}
		if e.TimestampNs > info.MaxTimestampNs {
			info.MaxTimestampNs = e.TimestampNs
		}
	}
	info.DurationSeconds = float64(info.MaxTimestampNs-info.MinTimestampNs) / 1e9
	return info
}
