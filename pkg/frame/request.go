package frame

import (
	"fmt"
)

// State tracks one request/reply exchange on the serial link.
type State int

const (
	StateIdle State = iota
	StateBuilt
	StateSent
	StateAwaitingReply
	StateParsed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilt:
		return "built"
	case StateSent:
		return "sent"
	case StateAwaitingReply:
		return "awaiting-reply"
	case StateParsed:
		return "parsed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is the lifecycle of a single outbound frame: built, sent,
// awaiting reply, then parsed or failed. A request is constructed per
// call and discarded after the exchange; it is not reusable.
type Request struct {
	state State
	frame Frame
	wire  []byte
	reply *Frame
	err   error
}

// NewRequest encodes the outbound frame and enters StateBuilt.
func NewRequest(f Frame) (*Request, error) {
	wire, err := f.Encode()
	if err != nil {
		return nil, err
	}
	return &Request{state: StateBuilt, frame: f, wire: wire}, nil
}

// Wire returns the encoded outbound bytes.
func (r *Request) Wire() []byte { return r.wire }

// Frame returns the outbound frame.
func (r *Request) Frame() Frame { return r.frame }

// State returns the current lifecycle state.
func (r *Request) State() State { return r.state }

// MarkSent records that the wire bytes were written to the link.
func (r *Request) MarkSent() error {
	return r.transition(StateBuilt, StateSent)
}

// AwaitReply records that the exchange now blocks on the reply.
func (r *Request) AwaitReply() error {
	return r.transition(StateSent, StateAwaitingReply)
}

// Complete records the parsed reply. Write exchanges that carry no
// reply complete directly from StateSent with a nil reply.
func (r *Request) Complete(reply *Frame) error {
	if r.state != StateSent && r.state != StateAwaitingReply {
		return fmt.Errorf("cannot complete request in state %s", r.state)
	}
	r.state = StateParsed
	r.reply = reply
	return nil
}

// Fail terminates the exchange with err from any live state.
func (r *Request) Fail(err error) {
	r.state = StateFailed
	r.err = err
}

// Reply returns the parsed reply frame, nil for write exchanges.
func (r *Request) Reply() *Frame { return r.reply }

// Err returns the failure cause, nil unless StateFailed.
func (r *Request) Err() error { return r.err }

func (r *Request) transition(from, to State) error {
	if r.state != from {
		return fmt.Errorf("invalid transition %s -> %s", r.state, to)
	}
	r.state = to
	return nil
}
