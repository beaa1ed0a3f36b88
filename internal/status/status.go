// Package status provides a thread-safe status tracker for the panel-buttons
// daemon. It is read by the HTTP handlers and by the MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/panel-buttons/internal/button"
	"github.com/sweeney/panel-buttons/internal/menu"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	DebounceMs    int64
	LongPressMs   int64
	RepeatStartMs int64
	RepeatMinMs   int64
	AccelMs       int64
	HeartbeatMs   int64
	Broker        string
	HTTPPort      string
}

// ButtonStatus is the per-button slice of a Snapshot.
type ButtonStatus struct {
	Label    string
	Phase    button.Phase
	RepeatMs int64 // current repeat interval
	Counts   button.Counts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Buttons       []ButtonStatus
	Mode          menu.Mode
	Selected      menu.Field
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the per-button states and the menu position.
// Called from the polling loop on every tick.
func (t *Tracker) Update(buttons []ButtonStatus, mode menu.Mode, selected menu.Field) {
	t.mu.Lock()
	t.snap.Buttons = buttons
	t.snap.Mode = mode
	t.snap.Selected = selected
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Buttons = make([]ButtonStatus, len(t.snap.Buttons))
	copy(s.Buttons, t.snap.Buttons)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
