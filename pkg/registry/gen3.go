package registry

import "github.com/haoyan-ts/inspire-api/pkg/hand"

// jointRange is the shared limit of the angle/speed/force command
// registers.
const (
	jointMin int32 = hand.MinJointValue
	jointMax int32 = hand.MaxJointValue
)

// jointField builds a read-write six-joint command entry.
func jointField(name string, base uint16, access Access) RegisterEntry {
	return RegisterEntry{
		Name:             name,
		Base:             base,
		RegistersPerUnit: 1,
		UnitCount:        hand.NumJoints,
		Access:           access,
		Encoding:         EncInt16,
		Min:              jointMin,
		Max:              jointMax,
		AllowHold:        access.Writable(),
	}
}

// byteField builds a read-only entry carrying six byte-wide values
// packed two per register.
func byteField(name string, base uint16) RegisterEntry {
	return RegisterEntry{
		Name:             name,
		Base:             base,
		RegistersPerUnit: 1,
		UnitCount:        hand.NumJoints / 2,
		Access:           ReadOnly,
		Encoding:         EncByte,
		Max:              255,
	}
}

// scalarField builds a single-register entry.
func scalarField(name string, base uint16, access Access, min, max int32) RegisterEntry {
	return RegisterEntry{
		Name:             name,
		Base:             base,
		RegistersPerUnit: 1,
		UnitCount:        1,
		Access:           access,
		Encoding:         EncInt16,
		Min:              min,
		Max:              max,
	}
}

// actionStep builds one stored-gesture step block (19 registers).
func actionStep(name string, base uint16) RegisterEntry {
	return RegisterEntry{
		Name:             name,
		Base:             base,
		RegistersPerUnit: 19,
		UnitCount:        1,
		Access:           ReadWrite,
		Encoding:         EncInt16,
		Max:              32767,
	}
}

// gen3Entries is the Generation 3 register map. Addresses follow the
// vendor manual; adjacent fields sit two address units per register
// apart because the device address space is byte granular.
var gen3Entries = []RegisterEntry{
	scalarField(FieldHandID, 1000, ReadWrite, 1, 254),
	scalarField(FieldReduRatio, 1001, ReadOnly, 0, 0),
	scalarField(FieldClearError, 1004, WriteOnly, 0, 1),
	scalarField(FieldSave, 1005, WriteOnly, 0, 1),
	scalarField(FieldResetPara, 1006, WriteOnly, 0, 1),
	scalarField(FieldGestureForceClb, 1009, WriteOnly, 0, 1),
	jointField(FieldCurrentLimit, 1020, ReadWrite),
	jointField(FieldDefaultSpeedSet, 1032, ReadWrite),
	jointField(FieldDefaultForceSet, 1044, ReadWrite),
	scalarField(FieldVoltage, 1472, ReadOnly, 0, 0),
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
		// Grasp force readings go negative when the joint is
		// pushed against its commanded direction.
		Min: -jointMax,
		Max: jointMax,
	},
	byteField(FieldCurrent, 1594),
	byteField(FieldError, 1606),
	byteField(FieldStatus, 1612),
	byteField(FieldTemp, 1618),

	scalarField(FieldActionCheckData1, 2000, ReadWrite, 0, 32767),
	scalarField(FieldActionCheckData2, 2001, ReadWrite, 0, 32767),
	scalarField(FieldActionStepNum, 2002, ReadWrite, 0, 8),
	actionStep(FieldActionStep0, 2016),
	actionStep(FieldActionStep1, 2054),
	actionStep(FieldActionStep2, 2092),
	actionStep(FieldActionStep3, 2130),
	actionStep(FieldActionStep4, 2168),
	actionStep(FieldActionStep5, 2206),
	actionStep(FieldActionStep6, 2244),
	actionStep(FieldActionStep7, 2282),
	scalarField(FieldActionSeqIndex, 2320, ReadWrite, 0, 255),
	scalarField(FieldSaveActionSeq, 2321, WriteOnly, 0, 1),
	scalarField(FieldActionSeqRun, 2322, WriteOnly, 0, 1),
	jointField(FieldActionForceSet, 2334, ReadWrite),
}
