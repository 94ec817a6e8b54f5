package ports

import "context"

// ReportWriter persists a rendered report.
// Implementations should write atomically so readers never see partial output.
type ReportWriter interface {
	Write(ctx context.Context, data []byte) error
}
