// Package device implements the CSMA/CD side of the simulation: transmitting
// stations attached to the cable at fixed positions, each driving a
// transmission state machine with carrier sensing, collision detection, and
// randomized backoff.
package device

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

// TransmissionState describes where a transmission is in its lifecycle.
type TransmissionState int

// The states a transmission goes through. A collision sends a transmission
// from Sending or WaitingCD back through Backoff into Sending again.
const (
	StateSending TransmissionState = iota
	StateWaitingCD
	StateBackoff
	StateDone
)

func (s TransmissionState) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateWaitingCD:
		return "waiting-cd"
	case StateBackoff:
		return "backoff"
	case StateDone:
		return "done"
	}

	return "unknown"
}

// A Transmission is one attempt of a device to push a packet onto the cable.
// It writes the device's signal into the cable cell at its position and reads
// the same cell back to detect collisions.
type Transmission struct {
	id       string
	src      ether.Signal
	pos      int
	length   int
	cableLen int
	rng      *rand.Rand

	left  int // bits still to send
	wait  int // collision-detection window after the last bit
	sleep int // backoff rounds left
}

// NewTransmission creates a transmission of the given length for the device
// with the given signal. The collision-detection window equals the cable
// length, the worst-case time for a collision anywhere on the cable to
// propagate back to the sender.
func NewTransmission(
	src ether.Signal,
	pos int,
	length int,
	cableLen int,
	rng *rand.Rand,
) *Transmission {
	if length <= 0 {
		panic(fmt.Sprintf("packet length must be positive, got %d", length))
	}

	return &Transmission{
		id:       sim.GetIDGenerator().Generate(),
		src:      src,
		pos:      pos,
		length:   length,
		cableLen: cableLen,
		rng:      rng,
		left:     length,
		wait:     cableLen,
	}
}

// ID returns the transmission ID.
func (t *Transmission) ID() string {
	return t.id
}

// Length returns the total packet length in bit-rounds.
func (t *Transmission) Length() int {
	return t.length
}

// BitsLeft returns the number of bits still to send.
func (t *Transmission) BitsLeft() int {
	return t.left
}

// WaitRounds returns the remaining collision-detection window.
func (t *Transmission) WaitRounds() int {
	return t.wait
}

// BackoffRounds returns the remaining backoff rounds.
func (t *Transmission) BackoffRounds() int {
	return t.sleep
}

// State derives the lifecycle state from the counters.
func (t *Transmission) State() TransmissionState {
	switch {
	case t.wait == 0:
		return StateDone
	case t.sleep > 0:
		return StateBackoff
	case t.left > 0:
		return StateSending
	}

	return StateWaitingCD
}

// Transmit advances the transmission by one round against the given
// post-propagation cable snapshot. It may inject this round's outgoing signal
// into the cable, to be consumed by the next propagation step. It returns
// true once the transmission has finished.
func (t *Transmission) Transmit(cable *ether.Cable) bool {
	if t.wait == 0 {
		return true
	}

	if t.sleep > 0 {
		t.sleep--
		return false
	}

	cell := cable.Cell(t.pos)

	if cell.HasCollision() {
		// Jam detected. Back off for one or two cable round trips and
		// retransmit the whole packet from scratch.
		t.sleep = t.cableLen * (1 + t.rng.Intn(2))
		t.wait = t.cableLen
		t.left = t.length
		return false
	}

	if t.left == 0 {
		t.wait--
		return false
	}

	if cell.IsIdle() {
		cable.PutSignal(t.pos, t.src)
		t.left--
	}

	// The cell may transiently carry a foreign signal that has not collided
	// with ours yet. Hold this bit and try again next round.
	return false
}

// StatusString renders the transmission state for per-round reporting.
func (t *Transmission) StatusString() string {
	switch t.State() {
	case StateBackoff:
		return fmt.Sprintf("backing off (%d rounds)", t.sleep)
	case StateSending:
		return fmt.Sprintf("transmitting (%d/%d left)", t.left, t.length)
	case StateWaitingCD:
		return fmt.Sprintf("waiting for collision detection (%d rounds)", t.wait)
	}

	return "done"
}
