package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/jointreplay/internal/domain"
	"github.com/bft-labs/jointreplay/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// sliceSource implements ports.RecordSource over an in-memory slice.
type sliceSource struct {
	records []domain.RawRecord
	err     error
	loads   int
}

func (s *sliceSource) Load(ctx context.Context) ([]domain.RawRecord, error) {
	s.loads++
	return s.records, s.err
}

func (s *sliceSource) Name() string { return "memory" }

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
	ch     chan State
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func newMockEmitter() *mockEmitter {
	return &mockEmitter{ch: make(chan State, 64)}
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
	m.mu.Unlock()
	m.ch <- current
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func (m *mockEmitter) waitFor(t *testing.T, want State) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case s := <-m.ch:
			if s == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

// frameRecorder collects delivered frames.
type frameRecorder struct {
	mu     sync.Mutex
	frames []domain.Frame
}

func (r *frameRecorder) record(f domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *frameRecorder) indices() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Index
	}
	return out
}

func (r *frameRecorder) last() domain.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func part(name string, values ...float64) domain.RawPart {
	return domain.RawPart{Part: name, Position: &domain.RawPosition{Values: values}}
}

func record(seq, ts int64, parts ...domain.RawPart) domain.RawRecord {
	if parts == nil {
		parts = []domain.RawPart{}
	}
	return domain.RawRecord{
		SequenceID:  domain.Int64Ptr(seq),
		TimestampNs: domain.Int64Ptr(ts),
		Parts:       parts,
	}
}

// sampleRecords returns n records with sequence ids 100.. and 2ms spacing.
// ARM has three values and GRIPPER one.
func sampleRecords(n int) []domain.RawRecord {
	out := make([]domain.RawRecord, n)
	for i := 0; i < n; i++ {
		v := float64(i) / 10
		out[i] = record(int64(100+i), int64(i)*2_000_000,
			part("ARM", v, -v, 0.5),
			part("GRIPPER", v*2),
		)
	}
	return out
}

func testTable() domain.MappingTable {
	return domain.MappingTable{Parts: []domain.PartMapping{
		{Part: "ARM", URDF: "arm", Joints: []string{"shoulder", "elbow", "wrist"}},
		{Part: "GRIPPER", URDF: "eoat", Joints: []string{"finger"}},
		{Part: "BLADE", URDF: "eoat", Joints: []string{"blade"}},
	}}
}

func parseRecords(t *testing.T, records []domain.RawRecord, downsample int) *domain.Timeline {
	t.Helper()
	p := NewParser(&sliceSource{records: records}, mockLogger{})
	tl, err := p.Parse(context.Background(), downsample)
	require.NoError(t, err)
	return tl
}

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewMapper(testTable())
	require.NoError(t, err)
	return m
}
