// Package frame implements the hand's serial link framing: fixed
// two-byte header, device address, command, big-endian register
// address, payload length, payload, and an additive 8-bit checksum.
//
// Wire layout:
//
//	[0xEB 0x90] [ADDR:1] [CMD:1] [REG:2 BE] [LEN:1] [PAYLOAD:LEN] [SUM:1]
//
// The checksum covers ADDR through the last payload byte.
package frame

import (
	"bytes"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/utils/checksum"
)

// Link constants.
const (
	Header0 = 0xEB
	Header1 = 0x90

	CmdRead  = 0x11
	CmdWrite = 0x12

	// Overhead is the frame size excluding the payload.
	Overhead = 8

	// lenOffset is the byte offset of the length field.
	lenOffset = 6

	// AbsoluteMaxPayload is the hard cap imposed by the one-byte
	// length field. Parsers narrow it to the largest register span
	// in the active catalog.
	AbsoluteMaxPayload = 255
)

var header = []byte{Header0, Header1}

// Frame is one link-level message.
type Frame struct {
	DeviceAddr byte
	Command    byte
	Register   uint16
	Payload    []byte
}

// Encode renders the frame to wire bytes, computing the length field
// and checksum.
func (f Frame) Encode() ([]byte, error) {
	if len(f.Payload) > AbsoluteMaxPayload {
		return nil, handerr.Framingf("payload %d exceeds length field capacity", len(f.Payload))
	}
	wire := make([]byte, Overhead+len(f.Payload))
	wire[0] = Header0
	wire[1] = Header1
	wire[2] = f.DeviceAddr
	wire[3] = f.Command
	codec.PutWord(wire[4:6], f.Register)
	wire[lenOffset] = byte(len(f.Payload))
	copy(wire[7:], f.Payload)
	wire[len(wire)-1] = checksum.Sum8(wire[2 : len(wire)-1])
	return wire, nil
}

// Parse decodes exactly one frame from wire. Leading garbage before
// the header is tolerated; trailing bytes are not.
func Parse(wire []byte, maxPayload int) (Frame, error) {
	p := NewStreamParser(maxPayload)
	p.Feed(wire)
	f, err := p.Next()
	if err != nil {
		return Frame{}, err
	}
	if f == nil {
		return Frame{}, handerr.Framingf("truncated frame: %d bytes buffered", len(wire))
	}
	if p.Pending() > 0 {
		return Frame{}, handerr.Framingf("%d trailing bytes after frame", p.Pending())
	}
	return *f, nil
}

// StreamParser extracts frames from a byte stream, scanning past noise
// for the header marker. Buffers are bounded: a declared payload
// length above maxPayload is rejected before any payload bytes are
// consumed, so a corrupted length field cannot trigger an unbounded
// read.
type StreamParser struct {
	maxPayload int
	buf        []byte
}

// NewStreamParser returns a parser accepting payloads up to
// maxPayload bytes. Non-positive maxPayload means the absolute cap.
func NewStreamParser(maxPayload int) *StreamParser {
	if maxPayload <= 0 || maxPayload > AbsoluteMaxPayload {
		maxPayload = AbsoluteMaxPayload
	}
	return &StreamParser{maxPayload: maxPayload}
}

// Feed appends received bytes to the parse buffer.
func (p *StreamParser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Pending returns the number of buffered, unconsumed bytes.
func (p *StreamParser) Pending() int { return len(p.buf) }

// Reset discards all buffered bytes.
func (p *StreamParser) Reset() { p.buf = p.buf[:0] }

// Next attempts to extract one complete frame. It returns (nil, nil)
// when more bytes are needed. On a framing or checksum error the
// offending bytes are consumed so a later resync is possible, and the
// error is returned for the caller to surface.
func (p *StreamParser) Next() (*Frame, error) {
	// Locate the header, discarding noise before it. A trailing
	// 0xEB may be the start of the next header, so keep one byte.
	idx := bytes.Index(p.buf, header)
	if idx < 0 {
		if n := len(p.buf); n > 0 && p.buf[n-1] == Header0 {
			p.buf = p.buf[n-1:]
		} else {
			p.buf = p.buf[:0]
		}
		return nil, nil
	}
	p.buf = p.buf[idx:]

	if len(p.buf) <= lenOffset {
		return nil, nil
	}

	length := int(p.buf[lenOffset])
	if length > p.maxPayload {
		// Drop the header so scanning can resume.
		p.buf = p.buf[2:]
		return nil, handerr.Framingf("declared payload %d exceeds limit %d", length, p.maxPayload)
	}

	total := Overhead + length
	if len(p.buf) < total {
		return nil, nil
	}

	wire := p.buf[:total]
	p.buf = p.buf[total:]

	want := wire[total-1]
	got := checksum.Sum8(wire[2 : total-1])
	if got != want {
		return nil, handerr.Checksumf("got %02X, want %02X", got, want)
	}

	f := &Frame{
		DeviceAddr: wire[2],
		Command:    wire[3],
		Register:   codec.Word(wire[4:6]),
		Payload:    append([]byte(nil), wire[7:total-1]...),
	}
	return f, nil
}
