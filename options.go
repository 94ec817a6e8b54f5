package jointreplay

import (
	"github.com/bft-labs/jointreplay/internal/adapters/log"
	"github.com/bft-labs/jointreplay/internal/app"
	"github.com/bft-labs/jointreplay/internal/ports"
)

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// MappingRepository supplies the part -> URDF joint mapping table.
type MappingRepository = ports.MappingRepository

// UpdateHandler receives every frame delivered by the controller.
type UpdateHandler = app.UpdateFunc

// StateHandler is called on every playback state change.
type StateHandler func(previous, current State, reason string)

// OnStateChange implements the controller's state emitter.
func (f StateHandler) OnStateChange(previous, current State, reason string) {
	f(previous, current, reason)
}

// Option configures optional behavior of Replay.
type Option func(*options)

// options holds the optional configuration for a Replay instance.
type options struct {
	logger      ports.Logger
	onUpdate    UpdateHandler
	onState     StateHandler
	mappingRepo ports.MappingRepository
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.Discard,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithUpdateHandler sets the frame callback. It runs on the playback
// goroutine, or on the caller's goroutine for seeks.
func WithUpdateHandler(fn UpdateHandler) Option {
	return func(o *options) {
		o.onUpdate = fn
	}
}

// WithStateHandler sets a handler for playback state changes.
func WithStateHandler(fn StateHandler) Option {
	return func(o *options) {
		o.onState = fn
	}
}

// WithMappingRepository overrides where the mapping table is loaded from.
// By default it is read from Config.MappingFile, or the built-in table when empty.
func WithMappingRepository(repo MappingRepository) Option {
	return func(o *options) {
		o.mappingRepo = repo
	}
}
