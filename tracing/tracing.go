// Package tracing provides observers that record or render the simulation
// state round by round. Tracers attach to the engine and to devices as hooks
// and never feed back into simulation state.
package tracing

import (
	"github.com/sarchlab/ethersim/sim"
)

// A RoundEntry records the rendered cable state of one round.
type RoundEntry struct {
	Round int64
	Cable string
}

// A DeviceStatusEntry records the state of one device in one round.
type DeviceStatusEntry struct {
	Round         int64
	Device        string
	Position      int
	State         string
	BitsLeft      int
	WaitRounds    int
	BackoffRounds int
}

// A CompletionEntry records one successfully completed transmission.
type CompletionEntry struct {
	Round          int64
	Device         string
	TransmissionID string
	Position       int
	Length         int
}

// CollectTrace attaches a tracer hook to a hookable domain.
func CollectTrace(domain sim.Hookable, hook sim.Hook) {
	domain.AcceptHook(hook)
}
