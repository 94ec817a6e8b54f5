package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/jointreplay/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRecordFile_Load(t *testing.T) {
	path := writeFile(t, "robot_status.data.json", `[
		{"sequenceId": 100, "timestampNs": "1700000000000000000",
		 "parts": [{"part": "ARM", "position": {"values": [0.1, 0.2]}}, {"part": "PEDESTAL"}]},
		{"sequenceId": 101, "timestampNs": 1700000000002000000, "parts": []}
	]`)

	records, err := NewRecordFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.NotNil(t, first.SequenceID)
	assert.Equal(t, int64(100), int64(*first.SequenceID))
	assert.Equal(t, int64(1700000000000000000), int64(*first.TimestampNs))
	require.Len(t, first.Parts, 2)
	assert.Equal(t, []float64{0.1, 0.2}, first.Parts[0].Position.Values)
	assert.Nil(t, first.Parts[1].Position)

	assert.True(t, records[1].HasParts())
	assert.Empty(t, records[1].Parts)
}

func TestRecordFile_NotAnArray(t *testing.T) {
	path := writeFile(t, "obj.json", `{"sequenceId": 1}`)

	_, err := NewRecordFile(path).Load(context.Background())

	var dsErr *domain.DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, path, dsErr.Source)
}

func TestRecordFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewRecordFile(path).Load(context.Background())

	var dsErr *domain.DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRecordFile_InvalidJSON(t *testing.T) {
	path := writeFile(t, "broken.json", `[{"sequenceId": 1,`)

	_, err := NewRecordFile(path).Load(context.Background())

	var dsErr *domain.DataSourceError
	assert.True(t, errors.As(err, &dsErr))
}

func TestRecordFile_FractionalSequenceID(t *testing.T) {
	path := writeFile(t, "fractional.json", `[{"sequenceId": 1.5, "timestampNs": 0, "parts": []}]`)

	_, err := NewRecordFile(path).Load(context.Background())

	var dsErr *domain.DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Contains(t, err.Error(), "not a whole number")
}

func TestRecordFile_Name(t *testing.T) {
	assert.Equal(t, "/data/x.json", NewRecordFile("/data/x.json").Name())
}
