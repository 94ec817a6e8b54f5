package ports

import (
	"context"

	"github.com/bft-labs/jointreplay/internal/domain"
)

// RecordSource provides the persisted snapshot record array.
type RecordSource interface {
	// Load reads the full record array into memory.
	// Returns an error if the source is unreadable or not a record array.
	Load(ctx context.Context) ([]domain.RawRecord, error)

	// Name identifies the source in logs and errors (e.g. a file path).
	Name() string
}
