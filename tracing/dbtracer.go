package tracing

import (
	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

const (
	roundTable      = "rounds"
	deviceTable     = "device_status"
	completionTable = "completions"
)

// A DBTracer records the cable state, the device states, and the completed
// transmissions of every round into a data recorder. Attach it to the engine
// and to every device.
type DBTracer struct {
	recorder datarecording.DataRecorder
	cable    *ether.Cable
	devices  []*device.Device
}

// NewDBTracer creates a DBTracer and creates the tables it writes into.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	cable *ether.Cable,
	devices []*device.Device,
) *DBTracer {
	t := &DBTracer{
		recorder: recorder,
		cable:    cable,
		devices:  devices,
	}

	recorder.CreateTable(roundTable, RoundEntry{})
	recorder.CreateTable(deviceTable, DeviceStatusEntry{})
	recorder.CreateTable(completionTable, CompletionEntry{})

	return t
}

// Func records entries at the end of every round and whenever a transmission
// completes.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosAfterRound:
		t.recordRound(int64(ctx.Item.(sim.Round)))
	case device.HookPosTransmissionDone:
		t.recordCompletion(ctx)
	}
}

func (t *DBTracer) recordRound(round int64) {
	t.recorder.InsertData(roundTable, RoundEntry{
		Round: round,
		Cable: t.cable.String(),
	})

	for _, d := range t.devices {
		entry := DeviceStatusEntry{
			Round:    round,
			Device:   d.Name(),
			Position: d.Position(),
			State:    "idle",
		}

		if active := d.Active(); active != nil {
			entry.State = active.State().String()
			entry.BitsLeft = active.BitsLeft()
			entry.WaitRounds = active.WaitRounds()
			entry.BackoffRounds = active.BackoffRounds()
		}

		t.recorder.InsertData(deviceTable, entry)
	}
}

func (t *DBTracer) recordCompletion(ctx sim.HookCtx) {
	d := ctx.Domain.(*device.Device)
	trans := ctx.Item.(*device.Transmission)

	t.recorder.InsertData(completionTable, CompletionEntry{
		Round:          int64(ctx.Detail.(sim.Round)),
		Device:         d.Name(),
		TransmissionID: trans.ID(),
		Position:       d.Position(),
		Length:         trans.Length(),
	})
}
