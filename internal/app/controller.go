package app

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bft-labs/jointreplay/internal/domain"
	"github.com/bft-labs/jointreplay/internal/ports"
)

// Playback speed bounds applied by SetSpeed.
const (
	MinSpeed = 0.1
	MaxSpeed = 5.0
)

// DefaultSourceRateHz is the nominal sample rate of the recorder.
const DefaultSourceRateHz = 500.0

// DefaultJoinTimeout bounds how long Pause waits for the playback worker.
const DefaultJoinTimeout = time.Second

// UpdateFunc receives one frame per cursor change. It runs on the playback
// worker or on the goroutine that issued a seek, and its execution time is
// part of the frame budget.
type UpdateFunc func(frame domain.Frame)

// ControllerConfig contains the playback timing configuration.
type ControllerConfig struct {
	// SourceRateHz is the sample rate the data was recorded at.
	// The cadence is SourceRateHz / downsample factor of the timeline.
	SourceRateHz float64

	// Speed multiplies the cadence. Clamped to [MinSpeed, MaxSpeed].
	Speed float64

	// JoinTimeout bounds the wait for the worker in Pause and Stop.
	JoinTimeout time.Duration
}

// DefaultControllerConfig returns a config with a 500Hz source, 1x speed and 1s join timeout.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		SourceRateHz: DefaultSourceRateHz,
		Speed:        1.0,
		JoinTimeout:  DefaultJoinTimeout,
	}
}

// Status is a point-in-time view of a Controller.
type Status struct {
	domain.TimelineInfo
	State             string  `json:"state"`
	Playing           bool    `json:"playing"`
	CurrentIndex      int     `json:"current_index"`
	CurrentSequenceID int64   `json:"current_sequence_id"`
	Speed             float64 `json:"speed"`
	Downsample        int     `json:"downsample"`
}

// Controller owns the playback cursor and runs the timed playback loop.
//
// Seeks are expected from a single control goroutine. The cursor and state
// are guarded by mu, so seeks and the worker never race on them.
type Controller struct {
	timeline *domain.Timeline
	logger   ports.Logger
	cfg      ControllerConfig

	mu       sync.Mutex
	mapper   *Mapper
	onUpdate UpdateFunc
	emitter  StateEmitter
	state    State
	index    int
	shown    bool // frame at index has been delivered
	speed    float64
	run      *playbackRun
	lastDone chan struct{}
}

// playbackRun is one generation of the playback worker.
type playbackRun struct {
	stop chan struct{}
	done chan struct{}
}

// NewController creates a paused controller positioned at index 0.
func NewController(timeline *domain.Timeline, mapper *Mapper, cfg ControllerConfig, logger ports.Logger) (*Controller, error) {
	if timeline == nil {
		return nil, domain.ErrNotLoaded
	}
	if mapper == nil {
		return nil, fmt.Errorf("%w: mapper is required", domain.ErrInvalidConfig)
	}
	if cfg.SourceRateHz <= 0 {
		cfg.SourceRateHz = DefaultSourceRateHz
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = DefaultJoinTimeout
	}

	return &Controller{
		timeline: timeline,
		logger:   logger,
		cfg:      cfg,
		mapper:   mapper,
		state:    StatePaused,
		speed:    clampSpeed(cfg.Speed),
	}, nil
}

// SetUpdateHandler registers the frame callback, replacing any previous one.
func (c *Controller) SetUpdateHandler(fn UpdateFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// SetStateEmitter registers the state change observer. The end of timeline
// transition is emitted on the playback goroutine; the emitter must not call
// Pause, Stop or a seek synchronously from it.
func (c *Controller) SetStateEmitter(e StateEmitter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitter = e
}

// SetMapper swaps the joint mapper. The next delivered frame uses it.
func (c *Controller) SetMapper(m *Mapper) {
	if m == nil {
		return
	}
	c.mu.Lock()
	c.mapper = m
	c.mu.Unlock()
	c.logger.Info("mapper replaced", ports.Int("urdfs", len(m.URDFNames())))
}

// Mapper returns the active mapper.
func (c *Controller) Mapper() *Mapper {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapper
}

// Timeline returns the timeline being played.
func (c *Controller) Timeline() *domain.Timeline {
	return c.timeline
}

// SetSpeed sets the playback speed multiplier, clamped to [MinSpeed, MaxSpeed],
// and returns the applied value. A running loop picks it up on its next frame.
func (c *Controller) SetSpeed(speed float64) float64 {
	speed = clampSpeed(speed)
	c.mu.Lock()
	c.speed = speed
	c.mu.Unlock()
	c.logger.Info("playback speed set", ports.Float64("speed", speed))
	return speed
}

// Interval returns the current frame budget.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intervalLocked()
}

func (c *Controller) intervalLocked() time.Duration {
	perFrame := float64(c.timeline.DownsampleFactor()) / c.cfg.SourceRateHz
	return time.Duration(math.Round(perFrame / c.speed * float64(time.Second)))
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPlaying reports whether a playback loop is active.
func (c *Controller) IsPlaying() bool {
	return c.State() == StatePlaying
}

// CurrentIndex returns the cursor position.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the snapshot at the cursor.
func (c *Controller) Current() (domain.Snapshot, bool) {
	return c.timeline.ByIndex(c.CurrentIndex())
}

// Status returns timeline information combined with the cursor state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	st := Status{
		TimelineInfo: c.timeline.Info(),
		State:        c.state.String(),
		Playing:      c.state == StatePlaying,
		CurrentIndex: c.index,
		Speed:        c.speed,
		Downsample:   c.timeline.DownsampleFactor(),
	}
	c.mu.Unlock()

	if snap, ok := c.timeline.ByIndex(st.CurrentIndex); ok {
		st.CurrentSequenceID = snap.SequenceID
	}
	return st
}

// Play starts playback from the cursor. It is a no-op when already playing
// and returns domain.ErrEmptyTimeline when there is nothing to play.
func (c *Controller) Play() error {
	if c.timeline.Len() == 0 {
		return domain.ErrEmptyTimeline
	}

	c.mu.Lock()
	if c.state == StatePlaying {
		c.mu.Unlock()
		c.logger.Debug("already playing")
		return nil
	}
	prev := c.lastDone
	c.mu.Unlock()

	// A worker that paused itself at the end of the timeline may still be
	// delivering its reset frame.
	if prev != nil {
		c.waitDone(prev)
	}

	c.mu.Lock()
	if c.state == StatePlaying {
		c.mu.Unlock()
		return nil
	}
	r := &playbackRun{stop: make(chan struct{}), done: make(chan struct{})}
	c.run = r
	c.lastDone = r.done
	tr := c.setStateLocked(StatePlaying, ReasonPlay)
	index := c.index
	interval := c.intervalLocked()
	c.mu.Unlock()

	c.notify(tr)
	c.logger.Info("playback started",
		ports.Index(index),
		ports.Duration("interval", interval),
	)

	go c.loop(r)
	return nil
}

// Pause stops the playback loop and leaves the cursor where it is. It waits
// up to the join timeout for the worker to exit, including one that paused
// itself at the end of the timeline, so no frame is delivered after Pause
// returns.
func (c *Controller) Pause() {
	c.pause(ReasonPause)
}

// Stop pauses playback, resets the cursor to 0 and delivers that frame.
func (c *Controller) Stop() {
	c.pause(ReasonStop)

	c.mu.Lock()
	c.index = 0
	c.shown = true
	frame, fn, ok := c.frameLocked()
	c.mu.Unlock()

	c.logger.Info("playback stopped, reset to beginning")
	if ok {
		deliver(fn, frame)
	}
}

// GotoIndex moves the cursor to i and delivers that frame. A running loop is
// paused first and not resumed. Out-of-range requests return a
// *domain.SeekOutOfRangeError and leave the controller untouched.
func (c *Controller) GotoIndex(i int) error {
	n := c.timeline.Len()
	if i < 0 || i >= n {
		err := &domain.SeekOutOfRangeError{Index: i, Len: n, Err: domain.ErrIndexOutOfRange}
		c.logger.Warn("seek rejected", ports.Err(err))
		return err
	}
	c.seek(i)
	return nil
}

// GotoSequenceID resolves id to the first matching index and seeks there.
func (c *Controller) GotoSequenceID(id int64) error {
	i := c.timeline.IndexOfSequenceID(id)
	if i < 0 {
		err := &domain.SeekOutOfRangeError{
			Index:      -1,
			SequenceID: id,
			Len:        c.timeline.Len(),
			Err:        domain.ErrSequenceNotFound,
		}
		c.logger.Warn("seek rejected", ports.Err(err))
		return err
	}
	c.seek(i)
	return nil
}

// Close stops any running playback loop.
func (c *Controller) Close() {
	c.pause(ReasonClose)
}

func (c *Controller) seek(i int) {
	c.pause(ReasonSeek)

	c.mu.Lock()
	c.index = i
	c.shown = true
	frame, fn, ok := c.frameLocked()
	c.mu.Unlock()

	c.logger.Debug("seek",
		ports.Index(i),
		ports.SequenceID(frame.SequenceID),
	)
	if ok {
		deliver(fn, frame)
	}
}

func (c *Controller) pause(reason string) bool {
	c.mu.Lock()
	if c.state != StatePlaying {
		// A worker that paused itself at the end of the timeline may still be
		// delivering its reset frame.
		prev := c.lastDone
		c.mu.Unlock()
		if prev != nil {
			c.waitDone(prev)
		}
		return false
	}
	r := c.run
	c.run = nil
	tr := c.setStateLocked(StatePaused, reason)
	index := c.index
	c.mu.Unlock()

	if r != nil {
		close(r.stop)
		c.waitDone(r.done)
	}

	c.notify(tr)
	c.logger.Info("playback paused", ports.Index(index))
	return true
}

// waitDone waits for a worker generation to exit, bounded by the join timeout.
func (c *Controller) waitDone(done <-chan struct{}) {
	timer := time.NewTimer(c.cfg.JoinTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		c.logger.Warn("playback worker did not stop within join timeout",
			ports.Duration("timeout", c.cfg.JoinTimeout),
		)
	}
}

// loop is the playback worker. Each tick delivers the cursor frame if it has
// not been delivered yet, otherwise advances by one and delivers. The rest of
// the frame budget is slept; overruns start the next frame immediately.
func (c *Controller) loop(r *playbackRun) {
	defer close(r.done)

	for {
		started := time.Now()

		frame, fn, tr, ended, ok := c.step(r)
		if !ok {
			return
		}
		if ended {
			c.notify(tr)
			c.logger.Info("reached end of timeline, reset to beginning")
			deliver(fn, frame)
			return
		}
		deliver(fn, frame)

		wait := c.Interval() - time.Since(started)
		if wait <= 0 {
			select {
			case <-r.stop:
				return
			default:
				continue
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-r.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// step advances the cursor for one tick of run r. ok is false when r has been
// superseded by a pause or seek.
func (c *Controller) step(r *playbackRun) (frame domain.Frame, fn UpdateFunc, tr *transition, ended, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run != r {
		return domain.Frame{}, nil, nil, false, false
	}

	if c.shown {
		c.index++
	}
	if c.index >= c.timeline.Len() {
		c.index = 0
		c.run = nil
		tr = c.setStateLocked(StatePaused, ReasonEndOfTimeline)
		ended = true
	}
	c.shown = true

	frame, fn, _ = c.frameLocked()
	return frame, fn, tr, ended, true
}

// frameLocked builds the frame at the cursor. Must be called with c.mu held.
func (c *Controller) frameLocked() (domain.Frame, UpdateFunc, bool) {
	snap, ok := c.timeline.ByIndex(c.index)
	if !ok {
		return domain.Frame{}, nil, false
	}
	return domain.Frame{
		Index:       c.index,
		SequenceID:  snap.SequenceID,
		TimestampNs: snap.TimestampNs,
		Joints:      c.mapper.JointConfigs(snap),
	}, c.onUpdate, true
}

func deliver(fn UpdateFunc, frame domain.Frame) {
	if fn != nil {
		fn(frame)
	}
}

func clampSpeed(s float64) float64 {
	if s < MinSpeed {
		return MinSpeed
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}
