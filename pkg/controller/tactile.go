package controller

import (
	"context"
	"time"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/registry"
	"github.com/haoyan-ts/inspire-api/pkg/validate"
)

// readTactile reads and decodes one sensor region. Caller holds h.mu.
func (h *Hand) readTactile(ctx context.Context, op, field string) (hand.TactileMatrix, error) {
	entry, data, err := h.readField(ctx, op, field)
	if err != nil {
		return hand.TactileMatrix{}, err
	}
	return codec.DecodeTactileMatrix(data, entry.Rows, entry.Cols, entry.ColumnMajor)
}

// GetTactileData reads one sensor region. The palm ignores position.
func (h *Hand) GetTactileData(ctx context.Context, finger hand.Finger, position hand.SegmentPosition) (hand.TactileMatrix, error) {
	field, err := validate.TactileRegion(finger, position)
	if err != nil {
		return hand.TactileMatrix{}, err
	}
	if err := validate.GenerationSupport(h.cat, field); err != nil {
		return hand.TactileMatrix{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readTactile(ctx, "get_tactile_data", field)
}

// GetAllTactileData captures every sensor region into one frame. The
// regions are read in device order; the timestamp is taken after the
// last region so it marks when the capture completed.
func (h *Hand) GetAllTactileData(ctx context.Context) (hand.TactileFrame, error) {
	if err := validate.GenerationSupport(h.cat, registry.FieldPalmTac); err != nil {
		return hand.TactileFrame{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var frame hand.TactileFrame
	for _, region := range registry.TactileRegions() {
		m, err := h.readTactile(ctx, "get_all_tactile_data", region.Field)
		if err != nil {
			return hand.TactileFrame{}, err
		}
		if set, ok := frameSlots[region.Field]; ok {
			set(&frame, m)
		}
	}
	frame.Timestamp = time.Now()
	return frame, nil
}

// frameSetter assigns one decoded region into its TactileFrame slot.
type frameSetter = func(*hand.TactileFrame, hand.TactileMatrix)

var frameSlots = map[string]frameSetter{
	registry.FieldPinkyTopTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Pinky.Top = m },
	registry.FieldPinkyTipTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Pinky.Tip = m },
	registry.FieldPinkyBaseTac:  func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Pinky.Base = m },
	registry.FieldRingTopTac:    func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Ring.Top = m },
	registry.FieldRingTipTac:    func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Ring.Tip = m },
	registry.FieldRingBaseTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Ring.Base = m },
	registry.FieldMiddleTopTac:  func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Middle.Top = m },
	registry.FieldMiddleTipTac:  func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Middle.Tip = m },
	registry.FieldMiddleBaseTac: func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Middle.Base = m },
	registry.FieldIndexTopTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Index.Top = m },
	registry.FieldIndexTipTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Index.Tip = m },
	registry.FieldIndexBaseTac:  func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Index.Base = m },
	registry.FieldThumbTopTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Thumb.Top = m },
	registry.FieldThumbTipTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Thumb.Tip = m },
	registry.FieldThumbMidTac:   func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Thumb.Mid = m },
	registry.FieldThumbBaseTac:  func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Thumb.Base = m },
	registry.FieldPalmTac:       func(f *hand.TactileFrame, m hand.TactileMatrix) { f.Palm = m },
}
