package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFile_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "analysis.txt")
	w := NewReportFile(path)

	require.NoError(t, w.Write(context.Background(), []byte("first")))
	require.NoError(t, w.Write(context.Background(), []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not remain")
}

func TestReportFile_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewReportFile(path).Write(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
