// Package validate implements the semantic checks applied to every
// outbound value before encoding. Functions here are pure and
// stateless; the codec and frame layers trust their input and never
// re-check ranges.
package validate

import (
	"fmt"

	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/registry"
)

// JointValues checks an outbound value vector against its register
// entry: the count must match the entry's unit count and every element
// must sit inside the entry's range. The hold placeholder (-1) passes
// where the entry admits it. Violations name the offending joint index
// and value.
func JointValues(values []int32, entry registry.RegisterEntry) error {
	if len(values) != int(entry.UnitCount) {
		return &handerr.ValidationError{
			Field: entry.Name,
			Joint: -1,
			Msg:   fmt.Sprintf("expected %d values, got %d", entry.UnitCount, len(values)),
		}
	}
	for i, v := range values {
		if entry.AllowHold && v == hand.HoldValue {
			continue
		}
		if v < entry.Min || v > entry.Max {
			return &handerr.ValidationError{
				Field: entry.Name,
				Joint: i,
				Value: v,
				Min:   entry.Min,
				Max:   entry.Max,
			}
		}
	}
	return nil
}

// GenerationSupport checks that the field exists in the generation's
// catalog. Absence means the hardware generation cannot perform the
// operation at all, so the error class is GenerationError rather than
// a plain lookup failure.
func GenerationSupport(cat *registry.Catalog, field string) error {
	if !cat.Has(field) {
		return &handerr.GenerationError{Generation: cat.Generation(), Field: field}
	}
	return nil
}

// Writable checks that the entry may be written.
func Writable(entry registry.RegisterEntry) error {
	if !entry.Access.Writable() {
		return &handerr.ValidationError{Field: entry.Name, Joint: -1, Msg: "register is read-only"}
	}
	return nil
}

// Readable checks that the entry may be read.
func Readable(entry registry.RegisterEntry) error {
	if !entry.Access.Readable() {
		return &handerr.ValidationError{Field: entry.Name, Joint: -1, Msg: "register is write-only"}
	}
	return nil
}

// TactileRegion resolves a (finger, position) pair to its register
// field, rejecting undefined pairs.
func TactileRegion(finger hand.Finger, position hand.SegmentPosition) (string, error) {
	field, ok := registry.TactileField(finger, position)
	if !ok {
		return "", &handerr.ValidationError{
			Field: string(finger),
			Joint: -1,
			Msg:   "no tactile sensor at position " + string(position),
		}
	}
	return field, nil
}
