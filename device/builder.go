package device

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

// Builder can build devices.
type Builder struct {
	cable        *ether.Cable
	rng          *rand.Rand
	pos          int
	releases     []sim.Round
	minPacketLen int
	maxPacketLen int
}

// MakeBuilder creates a builder with the packet length range of the original
// lab scenario.
func MakeBuilder() Builder {
	return Builder{
		pos:          -1,
		minPacketLen: 5,
		maxPacketLen: 10,
	}
}

// WithCable sets the cable the device is attached to.
func (b Builder) WithCable(cable *ether.Cable) Builder {
	b.cable = cable
	return b
}

// WithRand sets the random source used for packet lengths and backoff draws.
func (b Builder) WithRand(rng *rand.Rand) Builder {
	b.rng = rng
	return b
}

// WithPosition sets the cable cell the device is attached to.
func (b Builder) WithPosition(pos int) Builder {
	b.pos = pos
	return b
}

// WithReleaseRounds sets the rounds at which the device releases its
// scheduled transmission attempts. The rounds must be in ascending order.
func (b Builder) WithReleaseRounds(rounds ...sim.Round) Builder {
	b.releases = rounds
	return b
}

// WithPacketLengthRange sets the inclusive range that scheduled packet
// lengths are drawn from.
func (b Builder) WithPacketLengthRange(minLen, maxLen int) Builder {
	b.minPacketLen = minLen
	b.maxPacketLen = maxLen
	return b
}

func (b Builder) parametersMustBeValid(name string) {
	if name == "" {
		panic("device name must not be empty")
	}

	first := ether.Signal([]rune(name)[0])
	if first.IsCollision() || first == '_' {
		panic("device name must not start with a reserved marker rune")
	}

	if b.cable == nil {
		panic("device must be attached to a cable")
	}

	if b.rng == nil {
		panic("device must be given a random source")
	}

	if b.pos < 0 || b.pos >= b.cable.Length() {
		panic(fmt.Sprintf(
			"device position %d is outside the cable range [0, %d)",
			b.pos, b.cable.Length()))
	}

	if b.minPacketLen <= 0 || b.maxPacketLen < b.minPacketLen {
		panic(fmt.Sprintf(
			"packet length range [%d, %d] is invalid",
			b.minPacketLen, b.maxPacketLen))
	}

	for i := 1; i < len(b.releases); i++ {
		if b.releases[i] < b.releases[i-1] {
			panic(fmt.Sprintf(
				"release rounds must be in ascending order, got %d after %d",
				b.releases[i], b.releases[i-1]))
		}
	}
}

// Build builds a device. The device uses the first rune of the name as its
// cable signal. Packet lengths for the scheduled attempts are drawn at build
// time so that a run is fully determined by its configuration and seed.
func (b Builder) Build(name string) *Device {
	b.parametersMustBeValid(name)

	d := &Device{
		name:   name,
		signal: ether.Signal([]rune(name)[0]),
		pos:    b.pos,
		cable:  b.cable,
	}

	d.schedule = make([]scheduleEntry, 0, len(b.releases))
	for _, release := range b.releases {
		length := b.minPacketLen +
			b.rng.Intn(b.maxPacketLen-b.minPacketLen+1)

		d.schedule = append(d.schedule, scheduleEntry{
			release: release,
			transmission: NewTransmission(
				d.signal, b.pos, length, b.cable.Length(), b.rng),
		})
	}

	return d
}
