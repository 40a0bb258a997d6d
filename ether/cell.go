package ether

// A Cell is the smallest addressable unit of the cable. The two sides hold
// the signal bound for the left and the right neighbor independently.
type Cell struct {
	Left  Signal
	Right Signal
}

// PutSignal injects a signal into the cell so that it spreads in both
// directions. Injecting into an occupied side collapses that side to
// Collision.
func (c *Cell) PutSignal(s Signal) {
	if c.Left.IsEmpty() {
		c.Left = s
	} else {
		c.Left = Collision
	}

	if c.Right.IsEmpty() {
		c.Right = s
	} else {
		c.Right = Collision
	}
}

// IsIdle returns true if neither side of the cell carries a signal.
func (c Cell) IsIdle() bool {
	return c.Left.IsEmpty() && c.Right.IsEmpty()
}

// HasCollision returns true if either side of the cell carries the collision
// marker.
func (c Cell) HasCollision() bool {
	return c.Left.IsCollision() || c.Right.IsCollision()
}

// Rune returns the rune that renders the cell. The left side takes precedence
// when both sides are occupied.
func (c Cell) Rune() rune {
	if c.Left.IsEmpty() {
		return c.Right.Rune()
	}
	return c.Left.Rune()
}
