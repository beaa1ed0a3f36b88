// Package gpio provides button line sampling with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader samples every configured button line in a single pass. The one-pass
// read is what keeps multiple button machines coherent within a polling
// tick: each tick sees one consistent set of levels.
type Reader interface {
	// Read returns one logical level per configured line, in configuration
	// order. true = pressed. The raw line values are inverted here: the
	// lines are pulled up and the buttons short to ground, so a low read
	// means pressed.
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering) for the three panel buttons.
const (
	DefaultPinUp     = 17
	DefaultPinDown   = 27
	DefaultPinSelect = 22
)
