// Package codec converts between semantic values and register-sized
// byte sequences. All functions are pure; inputs are assumed to be
// validated (the validator owns semantic correctness, this package
// owns byte-level correctness).
//
// The device speaks big-endian 16-bit words on both transports:
// Modbus mandates big-endian register payloads and the serial framing
// follows suit. PutWord and Word are the single home of the
// byte-order and word-splitting rules.
package codec

import (
	"encoding/binary"

	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
)

// WordSize is the byte width of one register.
const WordSize = 2

// holdWord is the wire encoding of hand.HoldValue.
const holdWord uint16 = 0xFFFF

// PutWord writes one register word into b[0:2].
func PutWord(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

// Word reads one register word from b[0:2].
func Word(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// EncodeInt16Sequence packs values as 16-bit words in joint-index
// order, two bytes per value. Negative values (the hold placeholder
// and signed fields) become two's complement words.
func EncodeInt16Sequence(values []int32) []byte {
	out := make([]byte, len(values)*WordSize)
	for i, v := range values {
		PutWord(out[i*WordSize:], uint16(v))
	}
	return out
}

// DecodeInt16Sequence unpacks count words from data. With signed set,
// words are interpreted as two's complement.
func DecodeInt16Sequence(data []byte, count int, signed bool) ([]int32, error) {
	if len(data) != count*WordSize {
		return nil, &handerr.DecodeError{Want: count * WordSize, Got: len(data), What: "int16 sequence"}
	}
	out := make([]int32, count)
	for i := range out {
		w := Word(data[i*WordSize:])
		if signed {
			out[i] = int32(int16(w))
		} else {
			out[i] = int32(w)
		}
	}
	return out, nil
}

// DecodePackedBytes unpacks count byte-wide values carried two per
// register, low byte of each register first. Temperature, error,
// status and current registers use this layout.
func DecodePackedBytes(data []byte, count int) ([]int32, error) {
	if count%2 != 0 || len(data) != count {
		return nil, &handerr.DecodeError{Want: count, Got: len(data), What: "packed byte sequence"}
	}
	out := make([]int32, 0, count)
	for i := 0; i < len(data); i += WordSize {
		w := Word(data[i:])
		out = append(out, int32(w&0xFF), int32(w>>8))
	}
	return out, nil
}

// DecodeTactileMatrix consumes rows*cols 16-bit samples. Finger
// regions arrive row-major; the palm arrives column-major and is
// transposed into row-major storage.
func DecodeTactileMatrix(data []byte, rows, cols int, columnMajor bool) (hand.TactileMatrix, error) {
	want := rows * cols * WordSize
	if len(data) != want {
		return hand.TactileMatrix{}, &handerr.DecodeError{Want: want, Got: len(data), What: "tactile matrix"}
	}

	m := hand.TactileMatrix{
		Rows: rows,
		Cols: cols,
		Data: make([]uint16, rows*cols),
	}
	for i := 0; i < rows*cols; i++ {
		v := Word(data[i*WordSize:])
		if columnMajor {
			r := i % rows
			c := i / rows
			m.Data[r*cols+c] = v
		} else {
			m.Data[i] = v
		}
	}
	return m, nil
}
