package app

import "github.com/bft-labs/jointreplay/internal/ports"

// State represents the playback state of a Controller.
type State int

const (
	// StatePaused is the initial state: the cursor does not advance.
	StatePaused State = iota
	// StatePlaying means a playback worker is advancing the cursor.
	StatePlaying
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StatePaused:
		return "Paused"
	case StatePlaying:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Transition reasons passed to StateEmitter.
const (
	ReasonPlay          = "play"
	ReasonPause         = "pause"
	ReasonStop          = "stop"
	ReasonSeek          = "seek"
	ReasonClose         = "close"
	ReasonEndOfTimeline = "end of timeline"
)

// StateEmitter is called when the playback state changes.
type StateEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// transition is a recorded state change, emitted after the controller lock is released.
type transition struct {
	from   State
	to     State
	reason string
}

// setStateLocked changes the state and returns the transition to emit.
// Must be called with c.mu held. Returns nil when the state is unchanged.
func (c *Controller) setStateLocked(to State, reason string) *transition {
	if c.state == to {
		return nil
	}
	tr := &transition{from: c.state, to: to, reason: reason}
	c.state = to
	return tr
}

// notify emits a transition outside of the controller lock.
func (c *Controller) notify(tr *transition) {
	if tr == nil {
		return
	}

	c.mu.Lock()
	emitter := c.emitter
	c.mu.Unlock()

	if emitter != nil {
		emitter.OnStateChange(tr.from, tr.to, tr.reason)
	}

	c.logger.Info("state transition",
		ports.String("from", tr.from.String()),
		ports.String("to", tr.to.String()),
		ports.String("reason", tr.reason),
	)
}
