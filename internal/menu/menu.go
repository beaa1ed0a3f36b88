// Package menu implements the panel's mode/value state machine, driven once
// per tick by the button event queries. Like the button machine it is pure
// logic: no hardware, no clock, no logging.
package menu

// Mode is the top-level panel mode.
type Mode string

const (
	// ModeRun is the normal display mode: Up/Down cycle between fields.
	ModeRun Mode = "RUN"
	// ModeSetup is the adjustment mode: Up/Down change the selected field's
	// value, with held repeats scrubbing continuously.
	ModeSetup Mode = "SETUP"
)

// Field is one adjustable setting shown on the panel.
type Field struct {
	Name  string
	Min   int
	Max   int
	Step  int
	Value int
}

// Inputs carries one tick's worth of button query results.
type Inputs struct {
	UpPressed   bool
	UpRepeating bool

	DownPressed   bool
	DownRepeating bool

	SelectPressed     bool
	SelectLongPressed bool
}

// Controller owns the mode, the field list and the selection cursor.
// Not safe for concurrent use — owned by the polling loop.
type Controller struct {
	mode     Mode
	fields   []Field
	selected int
}

// New creates a Controller in Run mode over a copy of the given fields.
func New(fields []Field) *Controller {
	c := &Controller{mode: ModeRun}
	c.fields = make([]Field, len(fields))
	copy(c.fields, fields)
	return c
}

// Apply advances the controller by one tick of button activity.
// A long press on Select toggles between Run and Setup; nothing else is
// processed on that tick so the press that opened Setup can't also adjust
// a value.
func (c *Controller) Apply(in Inputs) {
	if in.SelectLongPressed {
		if c.mode == ModeRun {
			c.mode = ModeSetup
		} else {
			c.mode = ModeRun
		}
		return
	}

	if len(c.fields) == 0 {
		return
	}

	switch c.mode {
	case ModeRun:
		if in.UpPressed {
			c.selected = (c.selected + 1) % len(c.fields)
		}
		if in.DownPressed {
			c.selected = (c.selected - 1 + len(c.fields)) % len(c.fields)
		}

	case ModeSetup:
		f := &c.fields[c.selected]
		if in.UpPressed || in.UpRepeating {
			f.Value = clamp(f.Value+f.Step, f.Min, f.Max)
		}
		if in.DownPressed || in.DownRepeating {
			f.Value = clamp(f.Value-f.Step, f.Min, f.Max)
		}
	}
}

// Mode returns the current panel mode.
func (c *Controller) Mode() Mode { return c.mode }

// Selected returns the currently selected field, or a zero Field if none
// are configured.
func (c *Controller) Selected() Field {
	if len(c.fields) == 0 {
		return Field{}
	}
	return c.fields[c.selected]
}

// Fields returns a copy of the field list with current values.
func (c *Controller) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
