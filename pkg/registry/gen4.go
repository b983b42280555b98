package registry

import "github.com/haoyan-ts/inspire-api/pkg/hand"

// tactileField builds one tactile sensor region entry. The register
// span is rows*cols 16-bit samples.
func tactileField(name string, base uint16, rows, cols int, columnMajor bool) RegisterEntry {
	return RegisterEntry{
		Name:             name,
		Base:             base,
		RegistersPerUnit: uint8(rows * cols),
		UnitCount:        1,
		Access:           ReadOnly,
		Encoding:         EncTactile,
		Rows:             rows,
		Cols:             cols,
		ColumnMajor:      columnMajor,
	}
}

// gen4Entries is the Generation 4 register map. It drops the Gen3
// stored-gesture and current-limit blocks, and adds network
// configuration plus the tactile sensor matrices.
var gen4Entries = []RegisterEntry{
	scalarField(FieldHandID, 1000, ReadWrite, 1, 254),
	scalarField(FieldReduRatio, 1001, ReadOnly, 0, 0),
	scalarField(FieldClearError, 1004, WriteOnly, 0, 1),
	scalarField(FieldSave, 1005, WriteOnly, 0, 1),
	scalarField(FieldResetPara, 1006, WriteOnly, 0, 1),
	scalarField(FieldGestureForceClb, 1009, WriteOnly, 0, 1),
	jointField(FieldDefaultSpeedSet, 1032, ReadWrite),
	jointField(FieldDefaultForceSet, 1044, ReadWrite),
	jointField(FieldPosSet, 1474, ReadWrite),
	jointField(FieldAngleSet, 1486, ReadWrite),
	jointField(FieldForceSet, 1498, ReadWrite),
	jointField(FieldSpeedSet, 1522, ReadWrite),
	jointField(FieldPosAct, 1534, ReadOnly),
	jointField(FieldAngleAct, 1546, ReadOnly),
	{
		Name:             FieldForceAct,
		Base:             1582,
		RegistersPerUnit: 1,
		UnitCount:        hand.NumJoints,
		Access:           ReadOnly,
		Encoding:         EncInt16,
		Min:              -jointMax,
		Max:              jointMax,
	},
	byteField(FieldCurrent, 1594),
	byteField(FieldError, 1606),
	byteField(FieldStatus, 1612),
	byteField(FieldTemp, 1618),
	scalarField(FieldIPPart1, 1700, ReadWrite, 0, 255),
	scalarField(FieldIPPart2, 1701, ReadWrite, 0, 255),
	scalarField(FieldIPPart3, 1702, ReadWrite, 0, 255),
	scalarField(FieldIPPart4, 1703, ReadWrite, 0, 255),

	tactileField(FieldPinkyTopTac, 3000, 3, 3, false),
	tactileField(FieldPinkyTipTac, 3018, 12, 8, false),
	tactileField(FieldPinkyBaseTac, 3210, 10, 8, false),
	tactileField(FieldRingTopTac, 3370, 3, 3, false),
	tactileField(FieldRingTipTac, 3388, 12, 8, false),
	tactileField(FieldRingBaseTac, 3580, 10, 8, false),
	tactileField(FieldMiddleTopTac, 3740, 3, 3, false),
	tactileField(FieldMiddleTipTac, 3758, 12, 8, false),
	tactileField(FieldMiddleBaseTac, 3950, 10, 8, false),
	tactileField(FieldIndexTopTac, 4110, 3, 3, false),
	tactileField(FieldIndexTipTac, 4128, 12, 8, false),
	tactileField(FieldIndexBaseTac, 4320, 10, 8, false),
	tactileField(FieldThumbTopTac, 4480, 3, 3, false),
	tactileField(FieldThumbTipTac, 4498, 12, 8, false),
	tactileField(FieldThumbMidTac, 4690, 3, 3, false),
	tactileField(FieldThumbBaseTac, 4708, 10, 8, false),
	// The palm matrix arrives column-first on the wire.
	tactileField(FieldPalmTac, 4900, 8, 14, true),
}

// Region ties a (finger, position) pair to its register field.
type Region struct {
	Finger   hand.Finger
	Position hand.SegmentPosition
	Field    string
}

// tactileRegions lists every Gen4 sensor region in read order.
var tactileRegions = []Region{
	{hand.FingerPinky, hand.SegmentTop, FieldPinkyTopTac},
	{hand.FingerPinky, hand.SegmentTip, FieldPinkyTipTac},
	{hand.FingerPinky, hand.SegmentBase, FieldPinkyBaseTac},
	{hand.FingerRing, hand.SegmentTop, FieldRingTopTac},
	{hand.FingerRing, hand.SegmentTip, FieldRingTipTac},
	{hand.FingerRing, hand.SegmentBase, FieldRingBaseTac},
	{hand.FingerMiddle, hand.SegmentTop, FieldMiddleTopTac},
	{hand.FingerMiddle, hand.SegmentTip, FieldMiddleTipTac},
	{hand.FingerMiddle, hand.SegmentBase, FieldMiddleBaseTac},
	{hand.FingerIndex, hand.SegmentTop, FieldIndexTopTac},
	{hand.FingerIndex, hand.SegmentTip, FieldIndexTipTac},
	{hand.FingerIndex, hand.SegmentBase, FieldIndexBaseTac},
	{hand.FingerThumb, hand.SegmentTop, FieldThumbTopTac},
	{hand.FingerThumb, hand.SegmentTip, FieldThumbTipTac},
	{hand.FingerThumb, hand.SegmentMid, FieldThumbMidTac},
	{hand.FingerThumb, hand.SegmentBase, FieldThumbBaseTac},
	{hand.FingerPalm, "", FieldPalmTac},
}

// TactileField resolves a (finger, position) pair to its register
// field name. The palm ignores position. The bool result is false when
// the pair names no defined sensor region.
func TactileField(finger hand.Finger, position hand.SegmentPosition) (string, bool) {
	for _, r := range tactileRegions {
		if r.Finger != finger {
			continue
		}
		if finger == hand.FingerPalm || r.Position == position {
			return r.Field, true
		}
	}
	return "", false
}

// TactileRegions returns every sensor region in device read order.
func TactileRegions() []Region {
	out := make([]Region, len(tactileRegions))
	copy(out, tactileRegions)
	return out
}
