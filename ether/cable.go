package ether

import (
	"fmt"
	"strings"
)

// DefaultCableLength is the cable length used by the original lab scenario.
const DefaultCableLength = 20

// A Cable is an ordered, fixed-length sequence of cells. It is
// double-buffered: Propagate computes the next snapshot from the current one
// and then swaps the buffers, so the propagation function itself stays pure.
type Cable struct {
	cells []Cell
	next  []Cell
}

// NewCable creates a cable with the given number of cells.
func NewCable(length int) *Cable {
	if length <= 0 {
		panic(fmt.Sprintf("cable length must be positive, got %d", length))
	}

	return &Cable{
		cells: make([]Cell, length),
		next:  make([]Cell, length),
	}
}

// Length returns the number of cells of the cable.
func (c *Cable) Length() int {
	return len(c.cells)
}

// Cell returns the current state of the cell at the given position.
func (c *Cable) Cell(pos int) Cell {
	return c.cells[pos]
}

// PutSignal injects a signal at the given position of the current snapshot.
// The signal is consumed by the next propagation step.
func (c *Cable) PutSignal(pos int, s Signal) {
	c.cells[pos].PutSignal(s)
}

// Propagate computes the next cable snapshot from the current one and makes
// it current. Every signal moves one cell outward in its bound direction.
// Signals crossing between two adjacent cells collide into both, and two
// signals arriving into the same cell from both sides collide there.
func (c *Cable) Propagate() {
	PropagateInto(c.cells, c.next)
	c.cells, c.next = c.next, c.cells
}

// Advance implements the simulation barrier: one propagation step per round.
func (c *Cable) Advance() {
	c.Propagate()
}

// PropagateInto computes one propagation step from cur into next. The two
// slices must have the same length and must not alias.
func PropagateInto(cur, next []Cell) {
	for i := range next {
		next[i] = Cell{}
	}

	// Resolve each adjacent pair once. toRight is the signal the left cell
	// sends rightward, toLeft the signal the right cell sends leftward. Each
	// side of a next-state cell is written by exactly one pair, so a
	// collision marker is never downgraded.
	for i := 1; i < len(cur); i++ {
		toRight := cur[i-1].Right
		toLeft := cur[i].Left

		switch {
		case !toRight.IsEmpty() && !toLeft.IsEmpty():
			next[i-1].Left = Collision
			next[i].Right = Collision
		case !toRight.IsEmpty():
			next[i].Right = toRight
		case !toLeft.IsEmpty():
			next[i-1].Left = toLeft
		}
	}

	// Two independently-arrived signals meeting in the same cell still
	// collide there.
	for i := range next {
		if !next[i].Left.IsEmpty() && !next[i].Right.IsEmpty() {
			next[i].Left = Collision
			next[i].Right = Collision
		}
	}
}

// Snapshot returns a copy of the current cell states for observers.
func (c *Cable) Snapshot() []Cell {
	snapshot := make([]Cell, len(c.cells))
	copy(snapshot, c.cells)
	return snapshot
}

// String renders the cable as one rune per cell.
func (c *Cable) String() string {
	var sb strings.Builder
	for _, cell := range c.cells {
		sb.WriteRune(cell.Rune())
	}
	return sb.String()
}
