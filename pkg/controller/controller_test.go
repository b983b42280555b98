package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/registry"
)

type busWrite struct {
	addr uint16
	data []byte
}

type busRead struct {
	addr  uint16
	words uint16
}

// fakeBus serves canned register images keyed by base address and
// records all traffic.
type fakeBus struct {
	connected bool
	images    map[uint16][]byte
	failAddr  map[uint16]error
	reads     []busRead
	writes    []busWrite
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		connected: true,
		images:    map[uint16][]byte{},
		failAddr:  map[uint16]error{},
	}
}

func (b *fakeBus) Connect(ctx context.Context) error { b.connected = true; return nil }
func (b *fakeBus) Close() error                      { b.connected = false; return nil }
func (b *fakeBus) Connected() bool                   { return b.connected }
func (b *fakeBus) Kind() string                      { return "fake" }

func (b *fakeBus) ReadRegisters(ctx context.Context, addr uint16, words uint16) ([]byte, error) {
	b.reads = append(b.reads, busRead{addr, words})
	if !b.connected {
		return nil, handerr.ErrConnection
	}
	if err, ok := b.failAddr[addr]; ok {
		return nil, err
	}
	if img, ok := b.images[addr]; ok {
		return img, nil
	}
	return make([]byte, int(words)*codec.WordSize), nil
}

func (b *fakeBus) WriteRegisters(ctx context.Context, addr uint16, data []byte) error {
	b.writes = append(b.writes, busWrite{addr, append([]byte(nil), data...)})
	if !b.connected {
		return handerr.ErrConnection
	}
	if err, ok := b.failAddr[addr]; ok {
		return err
	}
	return nil
}

func newHand(t *testing.T, gen hand.Generation, bus *fakeBus) *Hand {
	t.Helper()
	h, err := New(gen, bus)
	require.NoError(t, err)
	return h
}

func TestNewRejectsUnknownGeneration(t *testing.T) {
	_, err := New(hand.Generation(7), newFakeBus())
	assert.Error(t, err)
}

func TestSetAngle(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	angles := hand.JointValues{500, 500, 500, 500, 500, 0}
	require.NoError(t, h.SetAngle(context.Background(), angles))

	require.Len(t, bus.writes, 1)
	assert.Equal(t, uint16(1486), bus.writes[0].addr)
	assert.Equal(t, []byte{
		0x01, 0xF4, 0x01, 0xF4, 0x01, 0xF4,
		0x01, 0xF4, 0x01, 0xF4, 0x00, 0x00,
	}, bus.writes[0].data)
}

func TestSetAngleHoldPlaceholder(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	require.NoError(t, h.SetAngle(context.Background(), hand.JointValues{-1, 300, -1, 300, -1, 300}))
	require.Len(t, bus.writes, 1)
	assert.Equal(t, []byte{
		0xFF, 0xFF, 0x01, 0x2C, 0xFF, 0xFF,
		0x01, 0x2C, 0xFF, 0xFF, 0x01, 0x2C,
	}, bus.writes[0].data)
}

func TestSetAngleOutOfRangeNeverTouchesBus(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	err := h.SetAngle(context.Background(), hand.JointValues{0, 0, 1001, 0, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, handerr.ErrValidation)

	var ve *handerr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2, ve.Joint)
	assert.Empty(t, bus.writes, "rejected command must not reach the wire")
}

func TestCommandRegisters(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)
	ctx := context.Background()
	v := hand.Uniform(100)

	require.NoError(t, h.SetPos(ctx, v))
	require.NoError(t, h.SetSpeed(ctx, v))
	require.NoError(t, h.SetForce(ctx, v))

	require.Len(t, bus.writes, 3)
	assert.Equal(t, uint16(1474), bus.writes[0].addr)
	assert.Equal(t, uint16(1522), bus.writes[1].addr)
	assert.Equal(t, uint16(1498), bus.writes[2].addr)
}

func TestGetAngleActual(t *testing.T) {
	bus := newFakeBus()
	bus.images[1546] = codec.EncodeInt16Sequence([]int32{10, 20, 30, 40, 50, 60})
	h := newHand(t, hand.Gen4, bus)

	got, err := h.GetAngleActual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hand.JointValues{10, 20, 30, 40, 50, 60}, got)
	assert.Equal(t, []busRead{{1546, 6}}, bus.reads)
}

func TestGetForceActualIsSigned(t *testing.T) {
	bus := newFakeBus()
	bus.images[1582] = codec.EncodeInt16Sequence([]int32{-10, 0, 500, -1000, 1, 2})
	h := newHand(t, hand.Gen4, bus)

	got, err := h.GetForceActual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hand.JointValues{-10, 0, 500, -1000, 1, 2}, got)
}

func TestGetTemperaturePackedBytes(t *testing.T) {
	bus := newFakeBus()
	// Three registers carry six byte-wide values, low byte first.
	bus.images[1618] = []byte{0x20, 0x1E, 0x22, 0x21, 0x24, 0x23}
	h := newHand(t, hand.Gen4, bus)

	got, err := h.GetTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hand.JointValues{0x1E, 0x20, 0x21, 0x22, 0x23, 0x24}, got)
	assert.Equal(t, []busRead{{1618, 3}}, bus.reads)
}

func TestResetError(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	require.NoError(t, h.ResetError(context.Background()))
	require.Len(t, bus.writes, 1)
	assert.Equal(t, busWrite{1004, []byte{0x00, 0x01}}, bus.writes[0])
}

func TestGestures(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)
	ctx := context.Background()

	require.NoError(t, h.PerformOpen(ctx))
	require.NoError(t, h.PerformClose(ctx))
	require.NoError(t, h.ReturnToZero(ctx))

	require.Len(t, bus.writes, 3)
	for _, w := range bus.writes {
		assert.Equal(t, uint16(1486), w.addr, "gestures drive the angle register")
	}
	assert.Equal(t, codec.EncodeInt16Sequence(hand.Uniform(1000).Slice()), bus.writes[0].data)
	assert.Equal(t, codec.EncodeInt16Sequence(hand.Uniform(0).Slice()), bus.writes[1].data)
	assert.Equal(t, bus.writes[1].data, bus.writes[2].data)
}

func TestActionSequenceGen3(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen3, bus)
	ctx := context.Background()

	require.NoError(t, h.SetActionSequence(ctx, 4))
	require.NoError(t, h.RunActionSequence(ctx))

	require.Len(t, bus.writes, 2)
	assert.Equal(t, busWrite{2320, []byte{0x00, 0x04}}, bus.writes[0])
	assert.Equal(t, busWrite{2322, []byte{0x00, 0x01}}, bus.writes[1])
}

func TestActionSequenceUnsupportedOnGen4(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	err := h.SetActionSequence(context.Background(), 1)
	assert.ErrorIs(t, err, handerr.ErrGeneration)
	err = h.RunActionSequence(context.Background())
	assert.ErrorIs(t, err, handerr.ErrGeneration)
	assert.Empty(t, bus.writes)
}

func TestConnectionErrorPassesThrough(t *testing.T) {
	bus := newFakeBus()
	bus.connected = false
	h := newHand(t, hand.Gen4, bus)

	_, err := h.GetAngleActual(context.Background())
	assert.ErrorIs(t, err, handerr.ErrConnection)
	assert.ErrorIs(t, h.SetAngle(context.Background(), hand.Uniform(0)), handerr.ErrConnection)
}

func TestVerifyRegisters(t *testing.T) {
	bus := newFakeBus()
	bus.failAddr[1582] = handerr.Communicationf(nil, "no reply")
	h := newHand(t, hand.Gen4, bus)

	results, err := h.VerifyRegisters(context.Background())
	require.NoError(t, err)
	assert.True(t, results[registry.FieldHandID])
	assert.True(t, results[registry.FieldAngleAct])
	assert.False(t, results[registry.FieldForceAct], "probe failure is recorded, not fatal")
	assert.Len(t, results, 8)
}

func TestExportVerificationReport(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	report, err := h.ExportVerificationReport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "REGISTER VERIFICATION REPORT")
	assert.Contains(t, report, "generation: gen4")
	assert.Contains(t, report, "8 passed, 0 failed")
	assert.Contains(t, report, "ANGLE_ACT")
	assert.Contains(t, report, "PALM_TAC", "full register map is appended")
}
