package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
)

// seqImage builds a register image whose word at index i is i.
func seqImage(words int) []byte {
	vals := make([]int32, words)
	for i := range vals {
		vals[i] = int32(i)
	}
	return codec.EncodeInt16Sequence(vals)
}

func TestGetTactileDataFingerRegion(t *testing.T) {
	bus := newFakeBus()
	bus.images[3370] = seqImage(9) // ring top, 3x3
	h := newHand(t, hand.Gen4, bus)

	m, err := h.GetTactileData(context.Background(), hand.FingerRing, hand.SegmentTop)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, 3, m.Cols)
	// Finger regions arrive row-major.
	assert.Equal(t, uint16(0), m.At(0, 0))
	assert.Equal(t, uint16(5), m.At(1, 2))
	assert.Equal(t, uint16(8), m.At(2, 2))
}

func TestGetTactileDataPalmTransposed(t *testing.T) {
	bus := newFakeBus()
	bus.images[4900] = seqImage(112) // palm, 8x14 column-major on the wire
	h := newHand(t, hand.Gen4, bus)

	m, err := h.GetTactileData(context.Background(), hand.FingerPalm, "")
	require.NoError(t, err)
	assert.Equal(t, 8, m.Rows)
	assert.Equal(t, 14, m.Cols)
	// Wire index i lands at row i%8, column i/8.
	assert.Equal(t, uint16(0), m.At(0, 0))
	assert.Equal(t, uint16(1), m.At(1, 0))
	assert.Equal(t, uint16(8), m.At(0, 1))
	assert.Equal(t, uint16(111), m.At(7, 13))
}

func TestGetTactileDataInvalidRegion(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	_, err := h.GetTactileData(context.Background(), hand.FingerRing, hand.SegmentMid)
	assert.ErrorIs(t, err, handerr.ErrValidation)
	assert.Empty(t, bus.reads)
}

func TestTactileUnsupportedOnGen3(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen3, bus)

	_, err := h.GetTactileData(context.Background(), hand.FingerRing, hand.SegmentTop)
	assert.ErrorIs(t, err, handerr.ErrGeneration)

	_, err = h.GetAllTactileData(context.Background())
	assert.ErrorIs(t, err, handerr.ErrGeneration)
	assert.Empty(t, bus.reads)
}

func TestGetAllTactileData(t *testing.T) {
	bus := newFakeBus()
	h := newHand(t, hand.Gen4, bus)

	frame, err := h.GetAllTactileData(context.Background())
	require.NoError(t, err)

	assert.False(t, frame.Timestamp.IsZero())
	assert.Len(t, bus.reads, 17, "one read per sensor region")
	assert.Equal(t, busRead{3000, 9}, bus.reads[0], "pinky top first")
	assert.Equal(t, busRead{4900, 112}, bus.reads[16], "palm last")

	assert.Equal(t, 3, frame.Pinky.Top.Rows)
	assert.Equal(t, 12, frame.Index.Tip.Rows)
	assert.Equal(t, 8, frame.Index.Tip.Cols)
	assert.Equal(t, 10, frame.Thumb.Base.Rows)
	assert.Equal(t, 3, frame.Thumb.Mid.Rows, "thumb carries the extra mid segment")
	assert.Equal(t, 8, frame.Palm.Rows)
	assert.Equal(t, 14, frame.Palm.Cols)
}

func TestGetAllTactileDataStopsOnFirstFailure(t *testing.T) {
	bus := newFakeBus()
	bus.failAddr[3370] = handerr.Communicationf(nil, "timeout")
	h := newHand(t, hand.Gen4, bus)

	_, err := h.GetAllTactileData(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, handerr.ErrCommunication)
	assert.Len(t, bus.reads, 4, "reads stop at the failing region")
}
