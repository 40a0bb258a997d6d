package device

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

var _ = Describe("Builder", func() {
	var (
		cable *ether.Cable
		rng   *rand.Rand
	)

	BeforeEach(func() {
		cable = ether.NewCable(20)
		rng = rand.New(rand.NewSource(1))
	})

	It("should build a device", func() {
		d := MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithPosition(3).
			WithReleaseRounds(1, 40, 41).
			WithPacketLengthRange(5, 10).
			Build("A")

		Expect(d.Name()).To(Equal("A"))
		Expect(d.Signal()).To(Equal(ether.Signal('A')))
		Expect(d.Position()).To(Equal(3))
		Expect(d.ScheduledCount()).To(Equal(3))
		Expect(d.Active()).To(BeNil())
	})

	It("should reject an out-of-range position", func() {
		builder := MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithReleaseRounds(1)

		Expect(func() { builder.WithPosition(-1).Build("A") }).To(Panic())
		Expect(func() { builder.WithPosition(20).Build("A") }).To(Panic())
	})

	It("should reject an invalid packet length range", func() {
		builder := MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithPosition(3)

		Expect(func() {
			builder.WithPacketLengthRange(0, 5).Build("A")
		}).To(Panic())
		Expect(func() {
			builder.WithPacketLengthRange(8, 5).Build("A")
		}).To(Panic())
	})

	It("should reject an empty or reserved name", func() {
		builder := MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithPosition(3)

		Expect(func() { builder.Build("") }).To(Panic())
		Expect(func() { builder.Build("#") }).To(Panic())
		Expect(func() { builder.Build("_") }).To(Panic())
	})

	It("should reject out-of-order release rounds", func() {
		builder := MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithPosition(3).
			WithReleaseRounds(10, 5)

		Expect(func() { builder.Build("A") }).To(Panic())
	})

	It("should draw packet lengths from the configured range", func() {
		d := MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithPosition(3).
			WithReleaseRounds(1, 2, 3, 4, 5, 6, 7, 8).
			WithPacketLengthRange(5, 10).
			Build("A")

		for _, entry := range d.schedule {
			Expect(entry.transmission.Length()).To(BeNumerically(">=", 5))
			Expect(entry.transmission.Length()).To(BeNumerically("<=", 10))
		}
	})
})

var _ = Describe("Device", func() {
	var (
		cable *ether.Cable
		rng   *rand.Rand
	)

	BeforeEach(func() {
		cable = ether.NewCable(20)
		rng = rand.New(rand.NewSource(1))
	})

	buildDevice := func(releases ...sim.Round) *Device {
		return MakeBuilder().
			WithCable(cable).
			WithRand(rng).
			WithPosition(5).
			WithReleaseRounds(releases...).
			WithPacketLengthRange(6, 6).
			Build("A")
	}

	It("should stay live while a release round is still to come", func() {
		d := buildDevice(5)

		for round := 1; round <= 4; round++ {
			cable.Propagate()
			Expect(d.Refresh()).To(BeTrue())
			Expect(d.Active()).To(BeNil())
		}

		cable.Propagate()
		Expect(d.Refresh()).To(BeTrue())
		Expect(d.Active()).NotTo(BeNil())
	})

	It("should let a new transmission compete in its starting round", func() {
		d := buildDevice(1)

		cable.Propagate()
		d.Refresh()

		Expect(d.Active().BitsLeft()).To(Equal(5))
		Expect(cable.Cell(5).IsIdle()).To(BeFalse())
	})

	It("should complete a lone transmission and report it", func() {
		d := buildDevice(1)

		rounds := 0
		for {
			cable.Propagate()
			rounds++
			if !d.Refresh() {
				break
			}
		}

		Expect(d.CompletedCount()).To(Equal(1))
		// 6 bit-rounds, 20 rounds of collision detection, 1 final round to
		// report completion.
		Expect(rounds).To(Equal(6 + 20 + 1))
	})

	It("should process scheduled attempts strictly in order", func() {
		d := buildDevice(1, 2)

		cable.Propagate()
		d.Refresh()
		first := d.Active()

		for round := 2; round <= 26; round++ {
			cable.Propagate()
			Expect(d.Refresh()).To(BeTrue())
			Expect(d.Active()).To(Equal(first))
		}

		// Round 27: the first attempt reports completion and the second one
		// starts in the same round.
		cable.Propagate()
		Expect(d.Refresh()).To(BeTrue())
		Expect(d.Active()).NotTo(BeNil())
		Expect(d.Active()).NotTo(Equal(first))
		Expect(d.CompletedCount()).To(Equal(1))
	})

	It("should invoke hooks on transmission start and completion", func() {
		d := buildDevice(1)

		recorder := &hookRecorder{}
		d.AcceptHook(recorder)

		for {
			cable.Propagate()
			if !d.Refresh() {
				break
			}
		}

		Expect(recorder.positions).To(Equal([]*sim.HookPos{
			HookPosTransmissionStart,
			HookPosTransmissionDone,
		}))
	})
})

type hookRecorder struct {
	positions []*sim.HookPos
}

func (r *hookRecorder) Func(ctx sim.HookCtx) {
	r.positions = append(r.positions, ctx.Pos)
}
