// Package hand defines the domain types shared across the protocol
// engine: hardware generations, joint addressing, joint value vectors
// and tactile sensor data structures.
package hand

import (
	"fmt"
	"time"
)

// Generation identifies the hardware generation of the hand. The
// generation is fixed at controller construction time and selects the
// register catalog and tactile payload shapes.
type Generation int

const (
	// Gen3 is the third hardware generation. No tactile sensors.
	Gen3 Generation = 3
	// Gen4 is the fourth hardware generation. Adds tactile sensor
	// matrices on every finger segment and the palm.
	Gen4 Generation = 4
)

func (g Generation) String() string {
	switch g {
	case Gen3:
		return "gen3"
	case Gen4:
		return "gen4"
	default:
		return fmt.Sprintf("gen?(%d)", int(g))
	}
}

// Valid reports whether g is a supported hardware generation.
func (g Generation) Valid() bool {
	return g == Gen3 || g == Gen4
}

// JointIndex identifies one of the six controllable degrees of freedom.
type JointIndex int

const (
	JointThumb JointIndex = iota
	JointIndexFinger
	JointMiddle
	JointRing
	JointPinky
	JointPalm // palm rotation
)

// NumJoints is the fixed joint count for every "all joints" operation.
const NumJoints = 6

func (j JointIndex) String() string {
	switch j {
	case JointThumb:
		return "thumb"
	case JointIndexFinger:
		return "index"
	case JointMiddle:
		return "middle"
	case JointRing:
		return "ring"
	case JointPinky:
		return "pinky"
	case JointPalm:
		return "palm"
	default:
		return fmt.Sprintf("joint?(%d)", int(j))
	}
}

// Joint value limits shared by the angle, speed and force command
// registers. The device encodes values as 16-bit words.
const (
	MinJointValue int32 = 0
	MaxJointValue int32 = 1000

	// HoldValue is the placeholder meaning "leave this joint
	// unchanged". It is encoded as 0xFFFF on the wire.
	HoldValue int32 = -1
)

// JointValues is an ordered vector of one value per joint, in
// JointIndex order.
type JointValues [NumJoints]int32

// Uniform returns a JointValues with every joint set to v.
func Uniform(v int32) JointValues {
	var out JointValues
	for i := range out {
		out[i] = v
	}
	return out
}

// Slice returns the values as a freshly allocated slice.
func (v JointValues) Slice() []int32 {
	out := make([]int32, NumJoints)
	copy(out, v[:])
	return out
}

// Finger names a tactile sensor group. Palm is treated as a
// single-region "finger" for the per-region read operation.
type Finger string

const (
	FingerThumb  Finger = "thumb"
	FingerIndex  Finger = "index"
	FingerMiddle Finger = "middle"
	FingerRing   Finger = "ring"
	FingerPinky  Finger = "pinky"
	FingerPalm   Finger = "palm"
)

// SegmentPosition names a sensor region within a finger.
type SegmentPosition string

const (
	SegmentTop  SegmentPosition = "top"
	SegmentTip  SegmentPosition = "tip"
	SegmentMid  SegmentPosition = "mid" // thumb only
	SegmentBase SegmentPosition = "base"
)

// TactileMatrix is a 2D grid of 16-bit pressure samples stored in
// row-major order.
type TactileMatrix struct {
	Rows int
	Cols int
	Data []uint16
}

// At returns the sample at row r, column c.
func (m TactileMatrix) At(r, c int) uint16 {
	return m.Data[r*m.Cols+c]
}

// Empty reports whether the matrix holds no samples.
func (m TactileMatrix) Empty() bool {
	return len(m.Data) == 0
}

// FingerTactile holds the three sensor regions of a regular finger.
type FingerTactile struct {
	Top  TactileMatrix
	Tip  TactileMatrix
	Base TactileMatrix
}

// ThumbTactile holds the four sensor regions of the thumb, which
// carries an extra mid segment.
type ThumbTactile struct {
	Top  TactileMatrix
	Tip  TactileMatrix
	Mid  TactileMatrix
	Base TactileMatrix
}

// TactileFrame is one complete tactile capture: every finger segment
// plus the palm, stamped when the last region read completed.
type TactileFrame struct {
	Timestamp time.Time
	Pinky     FingerTactile
	Ring      FingerTactile
	Middle    FingerTactile
	Index     FingerTactile
	Thumb     ThumbTactile
	Palm      TactileMatrix
}
