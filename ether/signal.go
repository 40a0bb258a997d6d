// Package ether models a shared Ethernet-style medium as a linear cable of
// cells. Signals spread one cell per round in both directions and turn into
// collision markers where they meet.
package ether

// A Signal is what one direction of a cable cell carries during a round. It
// is either Empty, the identifier of the transmitting device, or Collision.
type Signal rune

const (
	// Empty means no signal is present.
	Empty Signal = 0

	// Collision marks the spot where two or more signals have met. Once a
	// side of a cell carries Collision, it stays Collision for the rest of
	// the propagation step.
	Collision Signal = '#'
)

// IsEmpty returns true if no signal is present.
func (s Signal) IsEmpty() bool {
	return s == Empty
}

// IsCollision returns true if the signal is the collision marker.
func (s Signal) IsCollision() bool {
	return s == Collision
}

// Rune returns the rune that renders the signal.
func (s Signal) Rune() rune {
	if s == Empty {
		return '_'
	}
	return rune(s)
}
