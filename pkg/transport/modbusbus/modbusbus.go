// Package modbusbus implements the RegisterBus over Modbus/TCP using
// holding-register function codes 0x03 and 0x10. The hand exposes the
// same register map on both links, so no address translation happens
// here.
package modbusbus

import (
	"context"
	"sync"
	"time"

	"github.com/grid-x/modbus"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/transport"
)

// MaxRegistersPerRead is the Modbus protocol ceiling for one holding
// register read. Larger spans are split into consecutive reads.
const MaxRegistersPerRead = 125

// DefaultTimeout bounds one Modbus exchange when the config leaves it
// zero.
const DefaultTimeout = 1 * time.Second

// Bus is a RegisterBus over a Modbus/TCP connection.
type Bus struct {
	mu sync.Mutex

	cfg       transport.Config
	handler   *modbus.TCPClientHandler
	client    modbus.Client
	connected bool
}

// New creates a Modbus/TCP bus for address ("host:port").
func New(cfg transport.Config) *Bus {
	if cfg.Timeout == 0 {
		cfg.Timeout = transport.Duration(DefaultTimeout)
	}
	if cfg.DeviceID == 0 {
		cfg.DeviceID = 1
	}
	return &Bus{cfg: cfg}
}

// NewWithClient wraps an existing Modbus client. The bus starts
// connected and Close is a no-op on the client.
func NewWithClient(cfg transport.Config, client modbus.Client) *Bus {
	b := New(cfg)
	b.client = client
	b.connected = true
	return b
}

// Kind implements RegisterBus.
func (b *Bus) Kind() string { return "modbus-tcp" }

// Connect dials the device.
func (b *Bus) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}

	handler := modbus.NewTCPClientHandler(b.cfg.Address)
	handler.Timeout = b.cfg.Timeout.Std()
	handler.SetSlave(b.cfg.DeviceID)

	if err := handler.Connect(ctx); err != nil {
		return handerr.Communicationf(err, "connect %s", b.cfg.Address)
	}

	b.handler = handler
	b.client = modbus.NewClient(handler)
	b.connected = true
	return nil
}

// Close tears down the TCP connection.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return nil
	}
	b.connected = false
	b.client = nil
	if b.handler != nil {
		err := b.handler.Close()
		b.handler = nil
		return err
	}
	return nil
}

// Connected reports whether the bus is usable.
func (b *Bus) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// ReadRegisters reads words holding registers starting at addr,
// splitting spans wider than the protocol ceiling into consecutive
// reads.
func (b *Bus) ReadRegisters(ctx context.Context, addr uint16, words uint16) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return nil, handerr.ErrConnection
	}

	out := make([]byte, 0, int(words)*codec.WordSize)
	for words > 0 {
		qty := words
		if qty > MaxRegistersPerRead {
			qty = MaxRegistersPerRead
		}
		data, err := b.client.ReadHoldingRegisters(ctx, addr, qty)
		if err != nil {
			return nil, handerr.Communicationf(err, "read %d registers at %d", qty, addr)
		}
		if len(data) != int(qty)*codec.WordSize {
			return nil, &handerr.DecodeError{
				Want: int(qty) * codec.WordSize,
				Got:  len(data),
				What: "holding register read",
			}
		}
		out = append(out, data...)
		addr += qty
		words -= qty
	}
	return out, nil
}

// WriteRegisters writes the register image data to the block at addr
// with one WriteMultipleRegisters exchange.
func (b *Bus) WriteRegisters(ctx context.Context, addr uint16, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return handerr.ErrConnection
	}
	if len(data)%codec.WordSize != 0 {
		return &handerr.DecodeError{Want: len(data) + 1, Got: len(data), What: "write payload (odd length)"}
	}

	qty := uint16(len(data) / codec.WordSize)
	if _, err := b.client.WriteMultipleRegisters(ctx, addr, qty, data); err != nil {
		return handerr.Communicationf(err, "write %d registers at %d", qty, addr)
	}
	return nil
}

var _ transport.RegisterBus = (*Bus)(nil)
