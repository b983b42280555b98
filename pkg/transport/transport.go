// Package transport defines the narrow capability interface the
// protocol engine depends on. The two implementations (the framed
// serial link and the Modbus/TCP client) hide everything about their
// physical layer behind register-granular reads and writes.
package transport

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// RegisterBus is the single surface the hand controller dispatches
// through. Data crosses the interface as big-endian register words,
// two bytes per register, matching the device-native byte order on
// both links.
//
// Implementations serialize their own port access but the bus as a
// whole is a single shared resource: callers must not interleave
// operations from multiple goroutines without external locking.
type RegisterBus interface {
	// Connect opens the underlying link.
	Connect(ctx context.Context) error

	// Close releases the link. Closing a closed bus is a no-op.
	Close() error

	// Connected reports whether the link is open.
	Connected() bool

	// Kind returns a short transport label ("serial", "modbus-tcp")
	// for logs and metrics.
	Kind() string

	// ReadRegisters reads words registers starting at addr and
	// returns their big-endian byte image (2*words bytes).
	ReadRegisters(ctx context.Context, addr uint16, words uint16) ([]byte, error)

	// WriteRegisters writes the big-endian byte image data to the
	// block starting at addr. len(data) must be even.
	WriteRegisters(ctx context.Context, addr uint16, data []byte) error
}

// Config selects and parameterizes a bus implementation.
type Config struct {
	// Type is "serial" or "modbus-tcp".
	Type string `yaml:"type" json:"type" validate:"required,oneof=serial modbus-tcp"`

	// Address is the port path for serial ("/dev/ttyUSB0", "COM3")
	// or host:port for Modbus TCP.
	Address string `yaml:"address" json:"address" validate:"required"`

	// DeviceID is the hand's bus address (serial device address /
	// Modbus unit id).
	DeviceID uint8 `yaml:"device_id" json:"device_id"`

	// Timeout bounds a single request/reply exchange.
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// Serial holds serial-only options.
	Serial SerialOptions `yaml:"serial" json:"serial"`
}

// SerialOptions holds the serial port parameters.
type SerialOptions struct {
	BaudRate int     `yaml:"baudrate" json:"baudrate"`
	DataBits int     `yaml:"databits" json:"databits"`
	Parity   string  `yaml:"parity" json:"parity" validate:"omitempty,oneof=none odd even"`
	StopBits float64 `yaml:"stopbits" json:"stopbits"`
}

// Duration is a time.Duration that accepts "500ms" style strings in
// YAML, which yaml.v3 does not do for the bare type.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML accepts either a duration string or integer
// nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("invalid duration value %q", value.Value)
		}
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
