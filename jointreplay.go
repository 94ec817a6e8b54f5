// Package jointreplay replays recorded robot joint positions against URDF
// joint configurations.
//
// Example usage:
//
//	cfg := jointreplay.DefaultConfig()
//	cfg.DataFile = "data/robot_status1.data.json"
//	r, err := jointreplay.New(cfg, jointreplay.WithUpdateHandler(func(f jointreplay.Frame) {
//	    viewer.Apply(f.Joints)
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	if err := r.Controller().Play(); err != nil {
//	    log.Fatal(err)
//	}
package jointreplay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/jointreplay/internal/adapters/fs"
	"github.com/bft-labs/jointreplay/internal/adapters/log"
	"github.com/bft-labs/jointreplay/internal/app"
	"github.com/bft-labs/jointreplay/internal/domain"
	"github.com/bft-labs/jointreplay/internal/ports"
)

// Re-exported domain and application types.
type (
	Frame            = domain.Frame
	JointConfigs     = domain.JointConfigs
	Snapshot         = domain.Snapshot
	TimelineInfo     = domain.TimelineInfo
	MappingTable     = domain.MappingTable
	PartMapping      = domain.PartMapping
	ValidationReport = domain.ValidationReport
	State            = app.State
	Status           = app.Status
	AnalysisReport   = app.AnalysisReport
)

// Playback states.
const (
	StatePaused  = app.StatePaused
	StatePlaying = app.StatePlaying
)

// Errors returned by the replay API.
var (
	ErrNotLoaded         = domain.ErrNotLoaded
	ErrEmptyTimeline     = domain.ErrEmptyTimeline
	ErrInvalidDownsample = domain.ErrInvalidDownsample
	ErrInvalidConfig     = domain.ErrInvalidConfig
	ErrIndexOutOfRange   = domain.ErrIndexOutOfRange
	ErrSequenceNotFound  = domain.ErrSequenceNotFound
)

// DefaultMappingTable returns the built-in part -> URDF joint table.
func DefaultMappingTable() MappingTable {
	return domain.DefaultMappingTable()
}

// Config holds the configuration of a Replay.
type Config struct {
	// DataFile is the JSON array of recorded snapshots. Required.
	DataFile string

	// MappingFile is a YAML, TOML or JSON mapping table. Empty uses DefaultMappingTable.
	MappingFile string

	// Downsample keeps every Downsample-th record. Default 10.
	Downsample int

	// SourceRateHz is the recording rate. Default 500.
	SourceRateHz float64

	// Speed is the initial playback speed, clamped to [0.1, 5.0]. Default 1.0.
	Speed float64

	// JoinTimeout bounds how long Pause waits for the playback worker. Default 1s.
	JoinTimeout time.Duration

	// WatchMapping reloads the mapping table when MappingFile changes (after Start).
	WatchMapping bool
}

// DefaultConfig returns a Config with sensible default values.
// DataFile must be set before calling New.
func DefaultConfig() Config {
	return Config{
		Downsample:   10,
		SourceRateHz: app.DefaultSourceRateHz,
		Speed:        1.0,
		JoinTimeout:  app.DefaultJoinTimeout,
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Downsample == 0 {
		c.Downsample = d.Downsample
	}
	if c.SourceRateHz == 0 {
		c.SourceRateHz = d.SourceRateHz
	}
	if c.Speed == 0 {
		c.Speed = d.Speed
	}
	if c.JoinTimeout == 0 {
		c.JoinTimeout = d.JoinTimeout
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("%w: data file is required", ErrInvalidConfig)
	}
	if c.Downsample < 1 {
		return ErrInvalidDownsample
	}
	if c.SourceRateHz <= 0 {
		return fmt.Errorf("%w: source rate must be positive", ErrInvalidConfig)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("%w: join timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Replay is a loaded timeline with a playback controller.
// Use New() to create an instance.
type Replay struct {
	config      Config
	logger      ports.Logger
	source      ports.RecordSource
	mappingRepo ports.MappingRepository
	timeline    *domain.Timeline
	controller  *app.Controller

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New loads the mapping table and the data file, parses the timeline and
// builds a paused controller positioned at index 0.
func New(cfg Config, opts ...Option) (*Replay, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.Discard
	}
	repo := o.mappingRepo
	if repo == nil {
		repo = fs.NewMappingFile(cfg.MappingFile)
	}

	ctx := context.Background()

	table, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	mapper, err := app.NewMapper(table)
	if err != nil {
		return nil, err
	}

	source := fs.NewRecordFile(cfg.DataFile)
	parser := app.NewParser(source, logger)
	timeline, err := parser.Parse(ctx, cfg.Downsample)
	if err != nil {
		return nil, err
	}

	report := mapper.ValidateDOF(timeline.PartDOFs())
	for _, f := range report.Findings() {
		logger.Warn("mapping mismatch", ports.String("finding", f.String()))
	}

	controller, err := app.NewController(timeline, mapper, app.ControllerConfig{
		SourceRateHz: cfg.SourceRateHz,
		Speed:        cfg.Speed,
		JoinTimeout:  cfg.JoinTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if o.onUpdate != nil {
		controller.SetUpdateHandler(o.onUpdate)
	}
	if o.onState != nil {
		controller.SetStateEmitter(o.onState)
	}

	return &Replay{
		config:      cfg,
		logger:      logger,
		source:      source,
		mappingRepo: repo,
		timeline:    timeline,
		controller:  controller,
	}, nil
}

// Controller returns the playback controller.
func (r *Replay) Controller() *app.Controller {
	return r.controller
}

// Timeline returns the parsed timeline.
func (r *Replay) Timeline() *domain.Timeline {
	return r.timeline
}

// Mapper returns the active joint mapper.
func (r *Replay) Mapper() *app.Mapper {
	return r.controller.Mapper()
}

// Info returns summary information about the timeline.
func (r *Replay) Info() TimelineInfo {
	return r.timeline.Info()
}

// Validate cross-checks the timeline's parts with the active mapping table.
func (r *Replay) Validate() ValidationReport {
	return r.Mapper().ValidateDOF(r.timeline.PartDOFs())
}

// Analyze computes joint movement statistics for the timeline.
func (r *Replay) Analyze(threshold float64) AnalysisReport {
	report := app.Analyze(r.timeline, r.Mapper(), threshold)
	report.Source = r.source.Name()
	return report
}

// Start launches background services: the mapping watcher when
// Config.WatchMapping is set. Playback itself is driven through Controller().
func (r *Replay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}
	r.started = true

	if !r.config.WatchMapping {
		return nil
	}
	if r.mappingRepo.Path() == "" {
		return fmt.Errorf("%w: watch requires a mapping file", ErrInvalidConfig)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	watcher := app.NewMappingWatcher(r.mappingRepo, r.controller, 0, r.logger)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := watcher.Run(watchCtx); err != nil {
			r.logger.Error("mapping watcher stopped", ports.Err(err))
		}
	}()
	return nil
}

// Close stops playback and background services.
func (r *Replay) Close() error {
	r.controller.Close()

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	return nil
}
