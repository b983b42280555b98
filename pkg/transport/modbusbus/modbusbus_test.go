package modbusbus

import (
	"context"
	"errors"
	"testing"

	"github.com/grid-x/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/transport"
)

type readCall struct {
	addr uint16
	qty  uint16
}

// fakeClient records holding-register traffic and serves canned data.
type fakeClient struct {
	modbus.Client

	reads      []readCall
	writes     []readCall
	writeData  [][]byte
	registers  map[uint16]uint16
	failAfter  int // fail the nth read, 0 disables
	shortReply bool
}

func (c *fakeClient) ReadHoldingRegisters(ctx context.Context, addr, qty uint16) ([]byte, error) {
	c.reads = append(c.reads, readCall{addr, qty})
	if c.failAfter > 0 && len(c.reads) >= c.failAfter {
		return nil, errors.New("connection reset")
	}
	if c.shortReply {
		return []byte{0x00}, nil
	}
	out := make([]byte, 0, qty*2)
	for i := uint16(0); i < qty; i++ {
		v := c.registers[addr+i]
		out = append(out, byte(v>>8), byte(v))
	}
	return out, nil
}

func (c *fakeClient) WriteMultipleRegisters(ctx context.Context, addr, qty uint16, data []byte) ([]byte, error) {
	c.writes = append(c.writes, readCall{addr, qty})
	c.writeData = append(c.writeData, append([]byte(nil), data...))
	return nil, nil
}

func newTestBus(client modbus.Client) *Bus {
	return NewWithClient(transport.Config{Type: "modbus-tcp", Address: "192.168.11.210:6000"}, client)
}

func TestReadRegisters(t *testing.T) {
	client := &fakeClient{registers: map[uint16]uint16{1546: 500, 1547: 1000, 1548: 0xFFFF}}
	b := newTestBus(client)

	data, err := b.ReadRegisters(context.Background(), 1546, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xF4, 0x03, 0xE8, 0xFF, 0xFF}, data)
	assert.Equal(t, []readCall{{1546, 3}}, client.reads)
}

func TestReadRegistersSegmentsWideSpans(t *testing.T) {
	client := &fakeClient{registers: map[uint16]uint16{}}
	b := newTestBus(client)

	// 300 registers exceed the 125-register ceiling twice over.
	data, err := b.ReadRegisters(context.Background(), 3000, 300)
	require.NoError(t, err)
	assert.Len(t, data, 600)
	assert.Equal(t, []readCall{{3000, 125}, {3125, 125}, {3250, 50}}, client.reads)
}

func TestReadRegistersSingleSegmentAtCeiling(t *testing.T) {
	client := &fakeClient{registers: map[uint16]uint16{}}
	b := newTestBus(client)

	// The palm matrix (112 registers) fits one exchange.
	_, err := b.ReadRegisters(context.Background(), 4900, 112)
	require.NoError(t, err)
	assert.Equal(t, []readCall{{4900, 112}}, client.reads)
}

func TestReadRegistersClientError(t *testing.T) {
	client := &fakeClient{failAfter: 1}
	b := newTestBus(client)

	_, err := b.ReadRegisters(context.Background(), 1546, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, handerr.ErrCommunication)
}

func TestReadRegistersMidSegmentError(t *testing.T) {
	client := &fakeClient{registers: map[uint16]uint16{}, failAfter: 2}
	b := newTestBus(client)

	_, err := b.ReadRegisters(context.Background(), 3000, 200)
	require.Error(t, err)
	assert.ErrorIs(t, err, handerr.ErrCommunication)
}

func TestReadRegistersShortReply(t *testing.T) {
	client := &fakeClient{shortReply: true}
	b := newTestBus(client)

	_, err := b.ReadRegisters(context.Background(), 1546, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, handerr.ErrDecode)
}

func TestWriteRegisters(t *testing.T) {
	client := &fakeClient{}
	b := newTestBus(client)

	img := []byte{0x01, 0xF4, 0x01, 0xF4, 0xFF, 0xFF}
	require.NoError(t, b.WriteRegisters(context.Background(), 1486, img))

	require.Len(t, client.writes, 1)
	assert.Equal(t, readCall{1486, 3}, client.writes[0])
	assert.Equal(t, img, client.writeData[0])
}

func TestWriteRegistersOddLength(t *testing.T) {
	b := newTestBus(&fakeClient{})
	err := b.WriteRegisters(context.Background(), 1486, []byte{0x01})
	assert.ErrorIs(t, err, handerr.ErrDecode)
}

func TestNotConnected(t *testing.T) {
	b := New(transport.Config{Type: "modbus-tcp", Address: "192.168.11.210:6000"})

	_, err := b.ReadRegisters(context.Background(), 1546, 1)
	assert.ErrorIs(t, err, handerr.ErrConnection)
	assert.ErrorIs(t, b.WriteRegisters(context.Background(), 1486, []byte{0, 1}), handerr.ErrConnection)
	assert.False(t, b.Connected())
}

func TestCloseIdempotent(t *testing.T) {
	b := newTestBus(&fakeClient{})
	assert.True(t, b.Connected())
	require.NoError(t, b.Close())
	assert.False(t, b.Connected())
	require.NoError(t, b.Close())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "modbus-tcp", New(transport.Config{}).Kind())
}
