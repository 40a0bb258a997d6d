package ether

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cell", func() {
	It("should inject a signal into both directions", func() {
		cell := Cell{}
		cell.PutSignal('A')

		Expect(cell.Left).To(Equal(Signal('A')))
		Expect(cell.Right).To(Equal(Signal('A')))
	})

	It("should collapse to collision when injecting into an occupied cell",
		func() {
			cell := Cell{}
			cell.PutSignal('A')
			cell.PutSignal('B')

			Expect(cell.Left).To(Equal(Collision))
			Expect(cell.Right).To(Equal(Collision))
		})

	It("should render the left side with precedence", func() {
		Expect(Cell{}.Rune()).To(Equal('_'))
		Expect(Cell{Left: 'A'}.Rune()).To(Equal('A'))
		Expect(Cell{Right: 'B'}.Rune()).To(Equal('B'))
		Expect(Cell{Left: 'A', Right: 'A'}.Rune()).To(Equal('A'))
		Expect(Cell{Left: Collision, Right: Collision}.Rune()).To(Equal('#'))
	})
})

var _ = Describe("Cable", func() {
	var cable *Cable

	BeforeEach(func() {
		cable = NewCable(20)
	})

	It("should reject a non-positive length", func() {
		Expect(func() { NewCable(0) }).To(Panic())
		Expect(func() { NewCable(-3) }).To(Panic())
	})

	It("should start idle", func() {
		Expect(cable.String()).To(Equal("____________________"))
	})

	It("should spread a single signal symmetrically", func() {
		cable.PutSignal(10, 'A')

		for k := 1; k <= 9; k++ {
			cable.Propagate()

			Expect(cable.Cell(10 - k).Left).To(Equal(Signal('A')))
			Expect(cable.Cell(10 + k).Right).To(Equal(Signal('A')))

			for i := 0; i < cable.Length(); i++ {
				if i == 10-k || i == 10+k {
					continue
				}
				Expect(cable.Cell(i).IsIdle()).To(BeTrue())
			}
		}
	})

	It("should drop a signal off the cable ends", func() {
		cable.PutSignal(1, 'A')

		cable.Propagate()
		Expect(cable.Cell(0).Left).To(Equal(Signal('A')))

		cable.Propagate()
		Expect(cable.Cell(0).IsIdle()).To(BeTrue())
		Expect(cable.Cell(3).Right).To(Equal(Signal('A')))
	})

	It("should collide two fronts crossing between adjacent cells", func() {
		cable.PutSignal(4, 'A')
		cable.PutSignal(7, 'B')

		cable.Propagate()
		cable.Propagate()

		Expect(cable.Cell(5).Left).To(Equal(Collision))
		Expect(cable.Cell(6).Right).To(Equal(Collision))
	})

	It("should collide two fronts arriving into the same cell", func() {
		cable.PutSignal(4, 'A')
		cable.PutSignal(8, 'B')

		cable.Propagate()
		cable.Propagate()

		Expect(cable.Cell(6).Left).To(Equal(Collision))
		Expect(cable.Cell(6).Right).To(Equal(Collision))
	})

	It("should poison collisions outward", func() {
		cable.PutSignal(4, 'A')
		cable.PutSignal(8, 'B')

		cable.Propagate()
		cable.Propagate()
		cable.Propagate()

		Expect(cable.Cell(5).HasCollision()).To(BeTrue())
		Expect(cable.Cell(7).HasCollision()).To(BeTrue())

		cable.Propagate()

		Expect(cable.Cell(4).HasCollision()).To(BeTrue())
		Expect(cable.Cell(8).HasCollision()).To(BeTrue())
	})

	It("should reach both transmitter positions within the cable length",
		func() {
			cable.PutSignal(3, 'A')
			cable.PutSignal(9, 'B')

			sawCollisionAtA := false
			sawCollisionAtB := false
			for k := 0; k < cable.Length(); k++ {
				cable.Propagate()
				sawCollisionAtA =
					sawCollisionAtA || cable.Cell(3).HasCollision()
				sawCollisionAtB =
					sawCollisionAtB || cable.Cell(9).HasCollision()
			}

			Expect(sawCollisionAtA).To(BeTrue())
			Expect(sawCollisionAtB).To(BeTrue())
		})

	It("should render signals and collisions", func() {
		cable.PutSignal(4, 'A')
		cable.PutSignal(8, 'B')

		cable.Propagate()
		cable.Propagate()

		Expect(cable.String()).To(Equal("__A___#___B_________"))
	})

	It("should snapshot the current state", func() {
		cable.PutSignal(4, 'A')

		snapshot := cable.Snapshot()
		Expect(snapshot).To(HaveLen(20))
		Expect(snapshot[4].Left).To(Equal(Signal('A')))

		snapshot[4].Left = 'Z'
		Expect(cable.Cell(4).Left).To(Equal(Signal('A')))
	})
})
