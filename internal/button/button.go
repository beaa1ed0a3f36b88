package button

import (
	"errors"
	"fmt"
	"time"
)

// minTickInterval bounds how often Tick recomputes. Calls arriving sooner
// than this after the previous accepted tick are no-ops (the one-shot flags
// stay cleared). All machine timing is millisecond resolution, so a fixed
// 1ms floor loses nothing.
const minTickInterval = time.Millisecond

// accelPeriod is how often the repeat interval shrinks while held.
const accelPeriod = time.Second

// Button converts a noisy per-tick sample into debounced one-shot events:
// press, release, long-press start/end, and an accelerating repeat stream
// while held. One instance per physical input; instances are independent.
// Not safe for concurrent use — owned and ticked by a single caller.
type Button struct {
	cfg Config

	// repeatInterval shrinks from cfg.RepeatStart toward cfg.RepeatMin
	// while the hold continues.
	repeatInterval time.Duration

	lastTick   time.Time // last accepted Tick time
	edgeTime   time.Time // time of the last accepted edge
	lastRepeat time.Time // scheduling anchor for the next repeat
	lastAccel  time.Time // scheduling anchor for the next acceleration step

	rawLevel   bool // last observed post-inversion sample
	debouncing bool // edges are ignored until the debounce window elapses
	pressed    bool // debounced logical state
	holding    bool // past the long-press threshold, cleared on release

	// longPressReported blocks further long-press events until release.
	longPressReported bool

	// One-shot flags, cleared at the start of every Tick.
	shortPressed bool
	released     bool
	longPressed  bool
	longReleased bool
	repeating    bool

	counts Counts
}

// Validate reports whether the config is usable. Intended for flag parsing
// and other human-entered values; New itself accepts config as-is.
func (c Config) Validate() error {
	if c.Debounce < 0 || c.LongPress < 0 || c.RepeatStart < 0 || c.RepeatMin < 0 || c.Accel < 0 {
		return errors.New("durations must be non-negative")
	}
	min, start := c.RepeatMin, c.RepeatStart
	if min == 0 {
		min = DefaultRepeatMin
	}
	if start == 0 {
		start = DefaultRepeatStart
	}
	if min > start {
		return fmt.Errorf("repeat minimum %v exceeds start interval %v", min, start)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	}
	if c.LongPress == 0 {
		c.LongPress = DefaultLongPress
	}
	if c.RepeatStart == 0 {
		c.RepeatStart = DefaultRepeatStart
	}
	if c.RepeatMin == 0 {
		c.RepeatMin = DefaultRepeatMin
	}
	if c.Accel == 0 {
		c.Accel = DefaultAccel
	}
	return c
}

// New creates a Button with the given config. Zero config values take the
// package defaults.
func New(cfg Config) *Button {
	cfg = cfg.withDefaults()
	return &Button{
		cfg:            cfg,
		repeatInterval: cfg.RepeatStart,
	}
}

// Tick advances the machine by one polling pass. raw is the sampled input
// level for this pass; now must be monotonically non-decreasing across calls.
// All one-shot flags are cleared at entry and set at most once per tick.
func (b *Button) Tick(now time.Time, raw bool) {
	b.shortPressed = false
	b.released = false
	b.longPressed = false
	b.longReleased = false
	b.repeating = false

	if !b.lastTick.IsZero() && now.Sub(b.lastTick) < minTickInterval {
		return
	}
	b.lastTick = now

	level := raw
	if b.cfg.Inverted {
		level = !level
	}

	// A level change outside the debounce window is a real edge.
	if level != b.rawLevel && !b.debouncing {
		b.rawLevel = level
		b.debouncing = true
		b.edgeTime = now

		if level {
			b.shortPressed = true
			b.pressed = true
			b.holding = false
			// Restart the repeat schedule for this press.
			b.repeatInterval = b.cfg.RepeatStart
			b.lastRepeat = now
			b.lastAccel = now
			b.counts.Press++
		} else {
			b.released = true
			b.longReleased = b.holding
			b.pressed = false
			b.holding = false
			// Re-arm long-press detection for the next press.
			b.longPressReported = false
			b.counts.Release++
			if b.longReleased {
				b.counts.LongRelease++
			}
		}
	}

	if b.debouncing && now.Sub(b.edgeTime) >= b.cfg.Debounce {
		b.debouncing = false
	}

	if b.debouncing || !b.pressed {
		return
	}

	// Long-press promotion fires once per physical press. Both anchors
	// reset so the first repeat waits a full interval, not a partial one.
	if !b.longPressReported && now.Sub(b.edgeTime) >= b.cfg.LongPress {
		b.longPressed = true
		b.holding = true
		b.longPressReported = true
		b.lastRepeat = now
		b.lastAccel = now
		b.counts.LongPress++
	}

	// The repeat anchor advances by the interval rather than resetting to
	// now, so a late tick doesn't accumulate drift in the cadence.
	if b.holding && now.Sub(b.lastRepeat) >= b.repeatInterval {
		b.repeating = true
		b.lastRepeat = b.lastRepeat.Add(b.repeatInterval)
		b.counts.Repeat++
	}

	if b.holding && now.Sub(b.lastAccel) >= accelPeriod && b.repeatInterval > b.cfg.RepeatMin {
		b.repeatInterval -= b.cfg.Accel
		if b.repeatInterval < b.cfg.RepeatMin {
			b.repeatInterval = b.cfg.RepeatMin
		}
		b.lastAccel = now
	}
}

// ShortPressed reports whether a press edge was accepted this tick.
func (b *Button) ShortPressed() bool { return b.shortPressed }

// Released reports whether a release edge was accepted this tick.
func (b *Button) Released() bool { return b.released }

// LongPressed reports whether the hold threshold was crossed this tick.
func (b *Button) LongPressed() bool { return b.longPressed }

// LongReleased reports whether an active hold ended this tick. It fires in
// the same tick as Released.
func (b *Button) LongReleased() bool { return b.longReleased }

// Repeating reports whether a repeat fired this tick.
func (b *Button) Repeating() bool { return b.repeating }

// Label returns the configured button name.
func (b *Button) Label() string { return b.cfg.Label }

// Phase returns the debounced state of the machine.
func (b *Button) Phase() Phase {
	switch {
	case b.debouncing:
		return PhaseDebounce
	case b.holding:
		return PhaseHeld
	case b.pressed:
		return PhasePressed
	}
	return PhaseIdle
}

// RepeatInterval returns the currently scheduled interval between repeats.
func (b *Button) RepeatInterval() time.Duration { return b.repeatInterval }

// CountsSnapshot returns a copy of the per-kind event counts since startup.
func (b *Button) CountsSnapshot() Counts { return b.counts }

// FiredEvents returns one Event per one-shot flag set by the last Tick, in
// emission order, stamped with now. Returns nil when nothing fired.
func (b *Button) FiredEvents(now time.Time) []Event {
	var events []Event
	add := func(k Kind) {
		events = append(events, Event{Timestamp: now, Label: b.cfg.Label, Kind: k, Phase: b.Phase()})
	}
	if b.shortPressed {
		add(KindPress)
	}
	if b.released {
		add(KindRelease)
	}
	if b.longPressed {
		add(KindLongPress)
	}
	if b.longReleased {
		add(KindLongRelease)
	}
	if b.repeating {
		add(KindRepeat)
	}
	return events
}
