// Package button implements a polled event machine for a single debounced
// push button. This package has NO external dependencies (no GPIO, MQTT, OS,
// or time.Sleep). Time is always injectable via time.Time parameters: the
// caller samples the hardware and calls Tick once per polling pass.
package button

import "time"

// Phase is the debounced state of the machine, reported for status consumers.
type Phase string

const (
	PhaseIdle     Phase = "IDLE"     // released, stable
	PhaseDebounce Phase = "DEBOUNCE" // inside the post-edge debounce window
	PhasePressed  Phase = "PRESSED"  // down, long-press threshold not yet crossed
	PhaseHeld     Phase = "HELD"     // down past the threshold, repeats active
)

// Kind identifies a one-shot button event.
type Kind string

const (
	KindPress       Kind = "PRESS"
	KindRelease     Kind = "RELEASE"
	KindLongPress   Kind = "LONG_PRESS"
	KindLongRelease Kind = "LONG_RELEASE"
	KindRepeat      Kind = "REPEAT"
)

// Event represents a fired one-shot event, for publishing.
type Event struct {
	Timestamp time.Time
	Label     string
	Kind      Kind
	Phase     Phase
}

// Config holds the immutable tuning for one button. Zero values take the
// defaults below. Callers must keep Min <= Start; Validate catches this for
// human-entered values, New accepts config as-is.
type Config struct {
	// Debounce is how long raw transitions are ignored after an accepted edge.
	Debounce time.Duration
	// LongPress is how long the button must stay down before the hold starts.
	LongPress time.Duration
	// RepeatStart is the interval between the first repeats of a hold.
	RepeatStart time.Duration
	// RepeatMin is the floor the repeat interval shrinks toward.
	RepeatMin time.Duration
	// Accel is how much the repeat interval shrinks per second of hold.
	Accel time.Duration
	// Inverted flips the raw sample before edge detection.
	Inverted bool
	// Label names the button in logs, payloads and the status page.
	Label string
}

// Defaults, matching a typical panel push button wired active-low.
const (
	DefaultDebounce    = 20 * time.Millisecond
	DefaultLongPress   = 800 * time.Millisecond
	DefaultRepeatStart = 100 * time.Millisecond
	DefaultRepeatMin   = 8 * time.Millisecond
	DefaultAccel       = 100 * time.Millisecond
)

// Counts tracks the number of each event kind since startup.
type Counts struct {
	Press       int
	Release     int
	LongPress   int
	LongRelease int
	Repeat      int
}
