// Package serialbus implements the RegisterBus over the hand's framed
// RS485/UART protocol using a go.bug.st serial port.
package serialbus

import (
	"context"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/frame"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/transport"
)

// Defaults applied when the config leaves fields zero.
const (
	DefaultBaudRate = 115200
	DefaultDataBits = 8
	DefaultTimeout  = 500 * time.Millisecond

	readChunk = 256
)

// Bus is a RegisterBus over the serial link. One request/reply
// exchange is in flight at a time; the internal mutex serializes port
// access.
type Bus struct {
	mu sync.Mutex

	cfg      transport.Config
	port     serial.Port
	parser   *frame.StreamParser
	readBuf  []byte
	open     func() (serial.Port, error)
	deviceID byte
}

// New creates a serial bus. maxWords bounds the largest register span
// the link will accept in a reply (the biggest catalog entry).
func New(cfg transport.Config, maxWords uint16) *Bus {
	if cfg.Serial.BaudRate == 0 {
		cfg.Serial.BaudRate = DefaultBaudRate
	}
	if cfg.Serial.DataBits == 0 {
		cfg.Serial.DataBits = DefaultDataBits
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = transport.Duration(DefaultTimeout)
	}
	if cfg.DeviceID == 0 {
		cfg.DeviceID = 1
	}
	b := &Bus{
		cfg:      cfg,
		parser:   frame.NewStreamParser(int(maxWords) * codec.WordSize),
		readBuf:  make([]byte, readChunk),
		deviceID: cfg.DeviceID,
	}
	b.open = b.openPort
	return b
}

func (b *Bus) openPort() (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: b.cfg.Serial.BaudRate,
		DataBits: b.cfg.Serial.DataBits,
		Parity:   parseParity(b.cfg.Serial.Parity),
		StopBits: parseStopBits(b.cfg.Serial.StopBits),
	}
	return serial.Open(b.cfg.Address, mode)
}

func parseParity(s string) serial.Parity {
	switch s {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

func parseStopBits(v float64) serial.StopBits {
	switch v {
	case 1.5:
		return serial.OnePointFiveStopBits
	case 2:
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

// Kind implements RegisterBus.
func (b *Bus) Kind() string { return "serial" }

// Connect opens the serial port.
func (b *Bus) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.port != nil {
		return nil
	}

	port, err := b.open()
	if err != nil {
		return handerr.Communicationf(err, "open %s", b.cfg.Address)
	}
	// Short poll interval; the exchange deadline is enforced here,
	// not in the driver.
	if err := port.SetReadTimeout(20 * time.Millisecond); err != nil {
		port.Close()
		return handerr.Communicationf(err, "configure %s", b.cfg.Address)
	}
	b.port = port
	b.parser.Reset()
	return nil
}

// Close closes the serial port.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.port == nil {
		return nil
	}
	err := b.port.Close()
	b.port = nil
	return err
}

// Connected reports whether the port is open.
func (b *Bus) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port != nil
}

// ReadRegisters performs one read exchange: build frame, send, block
// for the framed reply, return its payload.
func (b *Bus) ReadRegisters(ctx context.Context, addr uint16, words uint16) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.port == nil {
		return nil, handerr.ErrConnection
	}

	num := int(words) * codec.WordSize
	req, err := frame.NewRequest(frame.Frame{
		DeviceAddr: b.deviceID,
		Command:    frame.CmdRead,
		Register:   addr,
		Payload:    []byte{byte(num)},
	})
	if err != nil {
		return nil, err
	}

	// Stale bytes from an aborted exchange would desynchronize the
	// reply scan.
	b.parser.Reset()
	if err := b.port.ResetInputBuffer(); err != nil {
		return nil, handerr.Communicationf(err, "flush input")
	}

	if _, err := b.port.Write(req.Wire()); err != nil {
		req.Fail(err)
		return nil, handerr.Communicationf(err, "write read request for register %d", addr)
	}
	_ = req.MarkSent()
	_ = req.AwaitReply()

	reply, err := b.awaitReply(ctx, addr)
	if err != nil {
		req.Fail(err)
		return nil, err
	}
	if len(reply.Payload) != num {
		err := &handerr.DecodeError{Want: num, Got: len(reply.Payload), What: "read reply payload"}
		req.Fail(err)
		return nil, err
	}
	_ = req.Complete(reply)
	return reply.Payload, nil
}

// awaitReply reads port bytes into the stream parser until a complete
// frame for addr arrives or the exchange deadline passes.
func (b *Bus) awaitReply(ctx context.Context, addr uint16) (*frame.Frame, error) {
	deadline := time.Now().Add(b.cfg.Timeout.Std())
	for {
		select {
		case <-ctx.Done():
			return nil, handerr.Communicationf(ctx.Err(), "read register %d", addr)
		default:
		}
		if time.Now().After(deadline) {
			return nil, handerr.Communicationf(nil, "timeout awaiting reply for register %d", addr)
		}

		n, err := b.port.Read(b.readBuf)
		if err != nil {
			return nil, handerr.Communicationf(err, "read port")
		}
		if n == 0 {
			continue
		}
		b.parser.Feed(b.readBuf[:n])

		f, err := b.parser.Next()
		if err != nil {
			// Framing/checksum damage is surfaced, not retried:
			// a corrupted reply may mean a desynchronized link.
			return nil, err
		}
		if f == nil {
			continue
		}
		if f.Register != addr {
			return nil, handerr.Framingf("reply register %d does not match request %d", f.Register, addr)
		}
		return f, nil
	}
}

// WriteRegisters performs one write exchange. The device acknowledges
// writes with an echo frame that carries no data; the echo is drained
// rather than parsed.
func (b *Bus) WriteRegisters(ctx context.Context, addr uint16, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.port == nil {
		return handerr.ErrConnection
	}
	if len(data)%codec.WordSize != 0 {
		return &handerr.DecodeError{Want: len(data) + 1, Got: len(data), What: "write payload (odd length)"}
	}

	req, err := frame.NewRequest(frame.Frame{
		DeviceAddr: b.deviceID,
		Command:    frame.CmdWrite,
		Register:   addr,
		Payload:    data,
	})
	if err != nil {
		return err
	}

	if _, err := b.port.Write(req.Wire()); err != nil {
		req.Fail(err)
		return handerr.Communicationf(err, "write register %d", addr)
	}
	_ = req.MarkSent()

	if err := b.port.Drain(); err != nil {
		req.Fail(err)
		return handerr.Communicationf(err, "drain after write")
	}
	if err := b.port.ResetInputBuffer(); err != nil {
		req.Fail(err)
		return handerr.Communicationf(err, "discard write echo")
	}
	_ = req.Complete(nil)
	return nil
}

var _ transport.RegisterBus = (*Bus)(nil)
