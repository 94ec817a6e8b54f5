package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/bft-labs/jointreplay/internal/domain"
)

// RecordFile implements ports.RecordSource over a JSON file holding an array
// of snapshot records.
type RecordFile struct {
	path string
}

// NewRecordFile creates a RecordFile for path.
func NewRecordFile(path string) *RecordFile {
	return &RecordFile{path: path}
}

// Name returns the file path.
func (f *RecordFile) Name() string {
	return f.path
}

// Load reads and decodes the whole file. Any failure is a *domain.DataSourceError.
func (f *RecordFile) Load(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, f.fail(err)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, f.fail(errors.Wrap(err, "read record file"))
	}
	return f.decode(data)
}

func (f *RecordFile) decode(data []byte) ([]domain.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, f.fail(errors.New("top-level value is not an array"))
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, f.fail(errors.Wrap(err, "decode record array"))
	}
	return records, nil
}

func (f *RecordFile) fail(err error) error {
	return &domain.DataSourceError{Source: f.path, Err: err}
}
