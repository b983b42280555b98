package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
)

func mustEncode(t *testing.T, f Frame) []byte {
	t.Helper()
	wire, err := f.Encode()
	require.NoError(t, err)
	return wire
}

func TestEncodeLayout(t *testing.T) {
	f := Frame{
		DeviceAddr: 0x01,
		Command:    CmdWrite,
		Register:   0x05CE, // 1486
		Payload:    []byte{0x01, 0xF4, 0x01, 0xF4},
	}
	wire := mustEncode(t, f)

	require.Len(t, wire, Overhead+4)
	assert.Equal(t, byte(Header0), wire[0])
	assert.Equal(t, byte(Header1), wire[1])
	assert.Equal(t, byte(0x01), wire[2])
	assert.Equal(t, byte(CmdWrite), wire[3])
	assert.Equal(t, []byte{0x05, 0xCE}, wire[4:6], "register address is big-endian")
	assert.Equal(t, byte(4), wire[6])
	assert.Equal(t, []byte{0x01, 0xF4, 0x01, 0xF4}, wire[7:11])

	var sum byte
	for _, b := range wire[2 : len(wire)-1] {
		sum += b
	}
	assert.Equal(t, sum, wire[len(wire)-1])
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	_, err := Frame{Payload: make([]byte, AbsoluteMaxPayload+1)}.Encode()
	assert.ErrorIs(t, err, handerr.ErrFraming)
}

func TestParseRoundTrip(t *testing.T) {
	orig := Frame{
		DeviceAddr: 0x02,
		Command:    CmdRead,
		Register:   0x060A,
		Payload:    []byte{0x0C},
	}
	wire := mustEncode(t, orig)

	back, err := Parse(wire, 0)
	require.NoError(t, err)
	assert.Equal(t, orig.DeviceAddr, back.DeviceAddr)
	assert.Equal(t, orig.Command, back.Command)
	assert.Equal(t, orig.Register, back.Register)
	assert.Equal(t, orig.Payload, back.Payload)
}

func TestParseEmptyPayload(t *testing.T) {
	wire := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdWrite, Register: 1005})
	back, err := Parse(wire, 0)
	require.NoError(t, err)
	assert.Empty(t, back.Payload)
}

func TestParseCorruptionNeverPasses(t *testing.T) {
	orig := Frame{
		DeviceAddr: 0x01,
		Command:    CmdWrite,
		Register:   0x05CE,
		Payload:    []byte{0x01, 0xF4, 0x00, 0x64},
	}
	wire := mustEncode(t, orig)

	for i := range wire {
		corrupted := append([]byte(nil), wire...)
		corrupted[i] ^= 0x40
		_, err := Parse(corrupted, 0)
		require.Error(t, err, "flipped byte %d must not parse", i)
		switch i {
		case 0, 1, 6:
			// Header and length corruption surface as framing
			// errors before the checksum is ever compared.
			assert.ErrorIs(t, err, handerr.ErrFraming, "byte %d", i)
		default:
			assert.ErrorIs(t, err, handerr.ErrChecksum, "byte %d", i)
		}
	}
}

func TestParseHeaderNotFound(t *testing.T) {
	_, err := Parse([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, 0)
	assert.ErrorIs(t, err, handerr.ErrFraming)
}

func TestParseTrailingGarbage(t *testing.T) {
	wire := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdRead, Register: 100, Payload: []byte{6}})
	_, err := Parse(append(wire, 0xAA), 0)
	assert.ErrorIs(t, err, handerr.ErrFraming)
}

func TestStreamParserSkipsLeadingNoise(t *testing.T) {
	wire := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdRead, Register: 1546, Payload: []byte{12}})

	p := NewStreamParser(0)
	p.Feed([]byte{0x00, 0xFF, 0xEB}) // noise, then a lone header byte
	f, err := p.Next()
	require.NoError(t, err)
	assert.Nil(t, f)

	p.Feed(wire)
	// The lone 0xEB is followed by the real header; scanning finds it.
	f, err = p.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, uint16(1546), f.Register)
	assert.Equal(t, 0, p.Pending())
}

func TestStreamParserIncremental(t *testing.T) {
	wire := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdRead, Register: 0x0102, Payload: []byte{1, 2, 3}})

	p := NewStreamParser(0)
	for _, b := range wire[:len(wire)-1] {
		p.Feed([]byte{b})
		f, err := p.Next()
		require.NoError(t, err)
		require.Nil(t, f, "frame must not complete early")
	}
	p.Feed(wire[len(wire)-1:])
	f, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, []byte{1, 2, 3}, f.Payload)
}

func TestStreamParserRejectsOversizedLengthBeforePayload(t *testing.T) {
	// Header + addr + cmd + reg + a length far beyond the catalog
	// bound. No payload bytes follow; rejection must not wait for
	// them.
	p := NewStreamParser(224)
	p.Feed([]byte{Header0, Header1, 0x01, CmdRead, 0x13, 0x24, 0xFB})
	f, err := p.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, handerr.ErrFraming)
	assert.Nil(t, f)
}

func TestStreamParserChecksumMismatchConsumesFrame(t *testing.T) {
	wire := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdRead, Register: 7, Payload: []byte{9}})
	wire[7] ^= 0xFF // corrupt the payload

	p := NewStreamParser(0)
	p.Feed(wire)
	_, err := p.Next()
	assert.ErrorIs(t, err, handerr.ErrChecksum)
	assert.Equal(t, 0, p.Pending(), "corrupted frame is consumed for resync")
}

func TestStreamParserBackToBackFrames(t *testing.T) {
	a := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdRead, Register: 10, Payload: []byte{1}})
	b := mustEncode(t, Frame{DeviceAddr: 1, Command: CmdRead, Register: 20, Payload: []byte{2}})

	p := NewStreamParser(0)
	p.Feed(append(a, b...))

	f1, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, f1)
	assert.Equal(t, uint16(10), f1.Register)

	f2, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, f2)
	assert.Equal(t, uint16(20), f2.Register)
}

func TestRequestLifecycle(t *testing.T) {
	req, err := NewRequest(Frame{DeviceAddr: 1, Command: CmdRead, Register: 1546, Payload: []byte{12}})
	require.NoError(t, err)
	assert.Equal(t, StateBuilt, req.State())
	assert.NotEmpty(t, req.Wire())

	require.NoError(t, req.MarkSent())
	require.NoError(t, req.AwaitReply())

	reply := &Frame{DeviceAddr: 1, Command: CmdRead, Register: 1546, Payload: make([]byte, 12)}
	require.NoError(t, req.Complete(reply))
	assert.Equal(t, StateParsed, req.State())
	assert.Equal(t, reply, req.Reply())
}

func TestRequestWriteCompletesWithoutReply(t *testing.T) {
	req, err := NewRequest(Frame{DeviceAddr: 1, Command: CmdWrite, Register: 1486, Payload: make([]byte, 12)})
	require.NoError(t, err)
	require.NoError(t, req.MarkSent())
	require.NoError(t, req.Complete(nil))
	assert.Equal(t, StateParsed, req.State())
	assert.Nil(t, req.Reply())
}

func TestRequestInvalidTransitions(t *testing.T) {
	req, err := NewRequest(Frame{DeviceAddr: 1, Command: CmdRead, Register: 1})
	require.NoError(t, err)

	assert.Error(t, req.AwaitReply(), "cannot await before sending")
	assert.Error(t, req.Complete(nil), "cannot complete before sending")

	require.NoError(t, req.MarkSent())
	assert.Error(t, req.MarkSent(), "cannot send twice")
}

func TestRequestFail(t *testing.T) {
	req, err := NewRequest(Frame{DeviceAddr: 1, Command: CmdRead, Register: 1})
	require.NoError(t, err)
	require.NoError(t, req.MarkSent())

	cause := handerr.Communicationf(nil, "read timeout")
	req.Fail(cause)
	assert.Equal(t, StateFailed, req.State())
	assert.ErrorIs(t, req.Err(), handerr.ErrCommunication)
}
