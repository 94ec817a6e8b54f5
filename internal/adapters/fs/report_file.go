package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ReportFile implements ports.ReportWriter with an atomic file write.
type ReportFile struct {
	path string
}

// NewReportFile creates a ReportFile writing to path.
func NewReportFile(path string) *ReportFile {
	return &ReportFile{path: path}
}

// Path returns the report file path.
func (r *ReportFile) Path() string {
	return r.path
}

// Write replaces the report file contents with data.
// Writes a temp file in the same directory, then renames it into place.
func (r *ReportFile) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create report directory %s", dir)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write report")
	}

	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "rename report")
	}
	return nil
}
