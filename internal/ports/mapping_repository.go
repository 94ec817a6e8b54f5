package ports

import (
	"context"

	"github.com/bft-labs/jointreplay/internal/domain"
)

// MappingRepository loads the part -> URDF joint mapping table.
type MappingRepository interface {
	// Load returns the current mapping table.
	Load(ctx context.Context) (domain.MappingTable, error)

	// Path returns the watched file path, or "" when the table is not file backed.
	Path() string
}
