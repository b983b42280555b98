// Package controller implements the operation surface of the hand: the
// high-level commands and readings callers use, dispatched through a
// RegisterBus. One controller drives one hand; operations are
// serialized because the device processes one exchange at a time.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haoyan-ts/inspire-api/pkg/codec"
	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
	"github.com/haoyan-ts/inspire-api/pkg/logger"
	"github.com/haoyan-ts/inspire-api/pkg/metrics"
	"github.com/haoyan-ts/inspire-api/pkg/registry"
	"github.com/haoyan-ts/inspire-api/pkg/transport"
	"github.com/haoyan-ts/inspire-api/pkg/validate"
)

// Hand drives one robotic hand over a register bus.
type Hand struct {
	mu sync.Mutex

	gen hand.Generation
	cat *registry.Catalog
	bus transport.RegisterBus
	log *logger.Logger
}

// Option customizes a controller.
type Option func(*Hand)

// WithLogger routes the controller's logs to l instead of the global
// logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Hand) { h.log = l }
}

// New creates a controller for a hardware generation on top of bus.
func New(gen hand.Generation, bus transport.RegisterBus, opts ...Option) (*Hand, error) {
	cat, err := registry.For(gen)
	if err != nil {
		return nil, err
	}
	h := &Hand{
		gen: gen,
		cat: cat,
		bus: bus,
		log: logger.Global(),
	}
	for _, o := range opts {
		o(h)
	}
	h.log = h.log.With(slog.String("generation", gen.String()), slog.String("transport", bus.Kind()))
	return h, nil
}

// Generation returns the hardware generation the controller drives.
func (h *Hand) Generation() hand.Generation { return h.gen }

// Catalog returns the register catalog in use.
func (h *Hand) Catalog() *registry.Catalog { return h.cat }

// Connect opens the underlying bus.
func (h *Hand) Connect(ctx context.Context) error {
	if err := h.bus.Connect(ctx); err != nil {
		metrics.IncError(h.bus.Kind(), errorClass(err))
		return err
	}
	metrics.SetConnected(h.bus.Kind(), true)
	h.log.Info("connected")
	return nil
}

// Close closes the underlying bus.
func (h *Hand) Close() error {
	metrics.SetConnected(h.bus.Kind(), false)
	return h.bus.Close()
}

// Connected reports whether the bus is up.
func (h *Hand) Connected() bool { return h.bus.Connected() }

// readField resolves and reads one catalog field, returning its raw
// register image.
func (h *Hand) readField(ctx context.Context, op, field string) (registry.RegisterEntry, []byte, error) {
	if err := validate.GenerationSupport(h.cat, field); err != nil {
		return registry.RegisterEntry{}, nil, err
	}
	entry, err := h.cat.Lookup(field)
	if err != nil {
		return registry.RegisterEntry{}, nil, err
	}
	if err := validate.Readable(entry); err != nil {
		return registry.RegisterEntry{}, nil, err
	}

	start := time.Now()
	data, err := h.bus.ReadRegisters(ctx, entry.Base, entry.Words())
	h.observe(op, field, start, err)
	if err != nil {
		return registry.RegisterEntry{}, nil, err
	}
	return entry, data, nil
}

// writeField validates and writes a value vector to one catalog field.
func (h *Hand) writeField(ctx context.Context, op, field string, values []int32) error {
	if err := validate.GenerationSupport(h.cat, field); err != nil {
		return err
	}
	entry, err := h.cat.Lookup(field)
	if err != nil {
		return err
	}
	if err := validate.Writable(entry); err != nil {
		return err
	}
	if err := validate.JointValues(values, entry); err != nil {
		return err
	}

	start := time.Now()
	err = h.bus.WriteRegisters(ctx, entry.Base, codec.EncodeInt16Sequence(values))
	h.observe(op, field, start, err)
	return err
}

// observe records one exchange in the metrics and the debug log. Each
// exchange gets a request id so concurrent hands can be told apart in
// shared logs.
func (h *Hand) observe(op, field string, start time.Time, err error) {
	elapsed := time.Since(start)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailed
		metrics.IncError(h.bus.Kind(), errorClass(err))
	}
	metrics.ObserveExchange(h.bus.Kind(), op, status, elapsed.Seconds())
	h.log.Debug("exchange",
		slog.String("request_id", uuid.NewString()),
		slog.String("operation", op),
		slog.String("field", field),
		slog.Duration("elapsed", elapsed),
		slog.Any("error", err),
	)
}

// errorClass maps an error to its taxonomy class label.
func errorClass(err error) string {
	switch {
	case errors.Is(err, handerr.ErrValidation):
		return "validation"
	case errors.Is(err, handerr.ErrGeneration):
		return "generation"
	case errors.Is(err, handerr.ErrUnsupportedField):
		return "unsupported_field"
	case errors.Is(err, handerr.ErrFraming):
		return "framing"
	case errors.Is(err, handerr.ErrChecksum):
		return "checksum"
	case errors.Is(err, handerr.ErrDecode):
		return "decode"
	case errors.Is(err, handerr.ErrConnection):
		return "connection"
	case errors.Is(err, handerr.ErrCommunication):
		return "communication"
	default:
		return "other"
	}
}

// readJoints reads a six-value EncInt16 field.
func (h *Hand) readJoints(ctx context.Context, op, field string) (hand.JointValues, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, data, err := h.readField(ctx, op, field)
	if err != nil {
		return hand.JointValues{}, err
	}
	signed := entry.Min < 0
	vals, err := codec.DecodeInt16Sequence(data, entry.ValueCount(), signed)
	if err != nil {
		return hand.JointValues{}, err
	}
	var out hand.JointValues
	copy(out[:], vals)
	return out, nil
}

// readPacked reads a six-value EncByte field.
func (h *Hand) readPacked(ctx context.Context, op, field string) (hand.JointValues, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, data, err := h.readField(ctx, op, field)
	if err != nil {
		return hand.JointValues{}, err
	}
	vals, err := codec.DecodePackedBytes(data, entry.ValueCount())
	if err != nil {
		return hand.JointValues{}, err
	}
	var out hand.JointValues
	copy(out[:], vals)
	return out, nil
}

// writeJoints writes a six-value command field.
func (h *Hand) writeJoints(ctx context.Context, op, field string, values hand.JointValues) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeField(ctx, op, field, values.Slice())
}

// SetAngle commands target joint angles. The hold placeholder (-1)
// leaves a joint unchanged.
func (h *Hand) SetAngle(ctx context.Context, angles hand.JointValues) error {
	return h.writeJoints(ctx, "set_angle", registry.FieldAngleSet, angles)
}

// SetPos commands raw actuator positions.
func (h *Hand) SetPos(ctx context.Context, positions hand.JointValues) error {
	return h.writeJoints(ctx, "set_pos", registry.FieldPosSet, positions)
}

// SetSpeed commands joint speeds.
func (h *Hand) SetSpeed(ctx context.Context, speeds hand.JointValues) error {
	return h.writeJoints(ctx, "set_speed", registry.FieldSpeedSet, speeds)
}

// SetForce commands joint force thresholds.
func (h *Hand) SetForce(ctx context.Context, forces hand.JointValues) error {
	return h.writeJoints(ctx, "set_force", registry.FieldForceSet, forces)
}

// GetAngleActual reads the measured joint angles.
func (h *Hand) GetAngleActual(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_angle_actual", registry.FieldAngleAct)
}

// GetAngleSet reads the commanded joint angles.
func (h *Hand) GetAngleSet(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_angle_set", registry.FieldAngleSet)
}

// GetPosActual reads the measured actuator positions.
func (h *Hand) GetPosActual(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_pos_actual", registry.FieldPosAct)
}

// GetPosSet reads the commanded actuator positions.
func (h *Hand) GetPosSet(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_pos_set", registry.FieldPosSet)
}

// GetSpeedSet reads the commanded joint speeds.
func (h *Hand) GetSpeedSet(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_speed_set", registry.FieldSpeedSet)
}

// GetForceActual reads the measured grasp forces. Values go negative
// when a joint is pushed against its commanded direction.
func (h *Hand) GetForceActual(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_force_actual", registry.FieldForceAct)
}

// GetForceSet reads the commanded force thresholds.
func (h *Hand) GetForceSet(ctx context.Context) (hand.JointValues, error) {
	return h.readJoints(ctx, "get_force_set", registry.FieldForceSet)
}

// GetCurrent reads the per-joint motor currents.
func (h *Hand) GetCurrent(ctx context.Context) (hand.JointValues, error) {
	return h.readPacked(ctx, "get_current", registry.FieldCurrent)
}

// GetError reads the per-joint error codes.
func (h *Hand) GetError(ctx context.Context) (hand.JointValues, error) {
	return h.readPacked(ctx, "get_error", registry.FieldError)
}

// GetStatus reads the per-joint status codes.
func (h *Hand) GetStatus(ctx context.Context) (hand.JointValues, error) {
	return h.readPacked(ctx, "get_status", registry.FieldStatus)
}

// GetTemperature reads the per-joint temperatures.
func (h *Hand) GetTemperature(ctx context.Context) (hand.JointValues, error) {
	return h.readPacked(ctx, "get_temperature", registry.FieldTemp)
}

// ResetError clears latched error codes on every joint.
func (h *Hand) ResetError(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeField(ctx, "reset_error", registry.FieldClearError, []int32{1})
}

// SaveParameters persists the current parameter set to flash.
func (h *Hand) SaveParameters(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeField(ctx, "save_parameters", registry.FieldSave, []int32{1})
}

// PerformOpen opens the hand fully.
func (h *Hand) PerformOpen(ctx context.Context) error {
	return h.writeJoints(ctx, "perform_open", registry.FieldAngleSet, hand.Uniform(hand.MaxJointValue))
}

// PerformClose closes the hand fully.
func (h *Hand) PerformClose(ctx context.Context) error {
	return h.writeJoints(ctx, "perform_close", registry.FieldAngleSet, hand.Uniform(hand.MinJointValue))
}

// ReturnToZero drives every joint back to the zero angle.
func (h *Hand) ReturnToZero(ctx context.Context) error {
	return h.writeJoints(ctx, "return_to_zero", registry.FieldAngleSet, hand.Uniform(0))
}
