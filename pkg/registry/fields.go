package registry

import "strings"

// Field names match the register mnemonics of the vendor's hardware
// manual so catalog dumps line up with the documentation.
const (
	FieldHandID           = "HAND_ID"
	FieldReduRatio        = "REDU_RATIO"
	FieldClearError       = "CLEAR_ERROR"
	FieldSave             = "SAVE"
	FieldResetPara        = "RESET_PARA"
	FieldGestureForceClb  = "GESTURE_FORCE_CLB"
	FieldCurrentLimit     = "CURRENT_LIMIT"
	FieldDefaultSpeedSet  = "DEFAULT_SPEED_SET"
	FieldDefaultForceSet  = "DEFAULT_FORCE_SET"
	FieldVoltage          = "VLTAGE" // sic, vendor spelling
	FieldPosSet           = "POS_SET"
	FieldAngleSet         = "ANGLE_SET"
	FieldForceSet         = "FORCE_SET"
	FieldSpeedSet         = "SPEED_SET"
	FieldPosAct           = "POS_ACT"
	FieldAngleAct         = "ANGLE_ACT"
	FieldForceAct         = "FORCE_ACT"
	FieldCurrent          = "CURRENT"
	FieldError            = "ERROR"
	FieldStatus           = "STATUS"
	FieldTemp             = "TEMP"
	FieldIPPart1          = "IP_PART1"
	FieldIPPart2          = "IP_PART2"
	FieldIPPart3          = "IP_PART3"
	FieldIPPart4          = "IP_PART4"
	FieldActionCheckData1 = "ACTION_SEQ_CHECKDATA1"
	FieldActionCheckData2 = "ACTION_SEQ_CHECKDATA2"
	FieldActionStepNum    = "ACTION_SEQ_STEPNUM"
	FieldActionStep0      = "ACTION_SEQ_STEP0"
	FieldActionStep1      = "ACTION_SEQ_STEP1"
	FieldActionStep2      = "ACTION_SEQ_STEP2"
	FieldActionStep3      = "ACTION_SEQ_STEP3"
	FieldActionStep4      = "ACTION_SEQ_STEP4"
	FieldActionStep5      = "ACTION_SEQ_STEP5"
	FieldActionStep6      = "ACTION_SEQ_STEP6"
	FieldActionStep7      = "ACTION_SEQ_STEP7"
	FieldActionSeqIndex   = "ACTION_SEQ_INDEX"
	FieldSaveActionSeq    = "SAVE_ACTION_SEQ"
	FieldActionSeqRun     = "ACTION_SEQ_RUN"
	FieldActionForceSet   = "ACTION_ADJUST_FORCE_SET"

	FieldPinkyTopTac   = "PINKY_TOP_TAC"
	FieldPinkyTipTac   = "PINKY_TIP_TAC"
	FieldPinkyBaseTac  = "PINKY_BASE_TAC"
	FieldRingTopTac    = "RING_TOP_TAC"
	FieldRingTipTac    = "RING_TIP_TAC"
	FieldRingBaseTac   = "RING_BASE_TAC"
	FieldMiddleTopTac  = "MIDDLE_TOP_TAC"
	FieldMiddleTipTac  = "MIDDLE_TIP_TAC"
	FieldMiddleBaseTac = "MIDDLE_BASE_TAC"
	FieldIndexTopTac   = "INDEX_TOP_TAC"
	FieldIndexTipTac   = "INDEX_TIP_TAC"
	FieldIndexBaseTac  = "INDEX_BASE_TAC"
	FieldThumbTopTac   = "THUMB_TOP_TAC"
	FieldThumbTipTac   = "THUMB_TIP_TAC"
	FieldThumbMidTac   = "THUMB_MID_TAC"
	FieldThumbBaseTac  = "THUMB_BASE_TAC"
	FieldPalmTac       = "PALM_TAC"
)

// Category groups registers by function for reporting.
type Category string

const (
	CategorySystemControl    Category = "system_control"
	CategoryActuatorCommands Category = "actuator_commands"
	CategorySensorReadings   Category = "sensor_readings"
	CategoryActionSequences  Category = "action_sequences"
	CategoryTouchSensors     Category = "touch_sensors"
	CategoryNetworkConfig    Category = "network_config"
	CategoryOther            Category = "other"
)

var categoryByField = map[string]Category{
	FieldHandID:          CategorySystemControl,
	FieldReduRatio:       CategorySystemControl,
	FieldClearError:      CategorySystemControl,
	FieldSave:            CategorySystemControl,
	FieldResetPara:       CategorySystemControl,
	FieldGestureForceClb: CategorySystemControl,
	FieldCurrentLimit:    CategorySystemControl,
	FieldDefaultSpeedSet: CategorySystemControl,
	FieldDefaultForceSet: CategorySystemControl,
	FieldVoltage:         CategorySensorReadings,

	FieldPosSet:   CategoryActuatorCommands,
	FieldAngleSet: CategoryActuatorCommands,
	FieldForceSet: CategoryActuatorCommands,
	FieldSpeedSet: CategoryActuatorCommands,

	FieldPosAct:   CategorySensorReadings,
	FieldAngleAct: CategorySensorReadings,
	FieldForceAct: CategorySensorReadings,
	FieldCurrent:  CategorySensorReadings,
	FieldError:    CategorySensorReadings,
	FieldStatus:   CategorySensorReadings,
	FieldTemp:     CategorySensorReadings,

	FieldIPPart1: CategoryNetworkConfig,
	FieldIPPart2: CategoryNetworkConfig,
	FieldIPPart3: CategoryNetworkConfig,
	FieldIPPart4: CategoryNetworkConfig,
}

// Categorize returns the functional category of a register field.
func Categorize(name string) Category {
	if c, ok := categoryByField[name]; ok {
		return c
	}
	switch {
	case strings.HasPrefix(name, "ACTION_"), name == FieldSaveActionSeq:
		return CategoryActionSequences
	case strings.HasSuffix(name, "_TAC"):
		return CategoryTouchSensors
	}
	return CategoryOther
}
