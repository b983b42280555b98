package controller

import (
	"context"

	"github.com/haoyan-ts/inspire-api/pkg/registry"
)

// Stored gesture sequences exist on Gen3 hardware only; on Gen4 these
// operations fail with a generation error before touching the wire.

// SetActionSequence selects the stored gesture sequence to run.
func (h *Hand) SetActionSequence(ctx context.Context, sequenceID int32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeField(ctx, "set_action_sequence", registry.FieldActionSeqIndex, []int32{sequenceID})
}

// RunActionSequence triggers the currently selected gesture sequence.
func (h *Hand) RunActionSequence(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeField(ctx, "run_action_sequence", registry.FieldActionSeqRun, []int32{1})
}

// SaveActionSequence persists the staged gesture sequence to flash.
func (h *Hand) SaveActionSequence(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeField(ctx, "save_action_sequence", registry.FieldSaveActionSeq, []int32{1})
}
