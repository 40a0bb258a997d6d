package tracing

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

// A ConsoleTracer renders the cable and the device states after every round,
// mirroring the classic terminal visualization: one rune per cell, `_` for an
// idle cell, `#` for a collision, and the device identifier otherwise.
type ConsoleTracer struct {
	w       io.Writer
	cable   *ether.Cable
	devices []*device.Device
}

// NewConsoleTracer creates a ConsoleTracer writing to w.
func NewConsoleTracer(
	w io.Writer,
	cable *ether.Cable,
	devices []*device.Device,
) *ConsoleTracer {
	return &ConsoleTracer{
		w:       w,
		cable:   cable,
		devices: devices,
	}
}

// Func renders a round report after every round, and one-line notes when
// transmissions start or complete.
func (t *ConsoleTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosAfterRound:
		t.renderRound(ctx.Item.(sim.Round))
	case device.HookPosTransmissionStart:
		d := ctx.Domain.(*device.Device)
		trans := ctx.Item.(*device.Transmission)
		fmt.Fprintf(t.w, "device %s starting transmission (length %d)\n",
			d.Name(), trans.Length())
	case device.HookPosTransmissionDone:
		d := ctx.Domain.(*device.Device)
		fmt.Fprintf(t.w, "device %s completed transmission\n", d.Name())
	}
}

func (t *ConsoleTracer) renderRound(round sim.Round) {
	fmt.Fprintf(t.w, "round %4d\n", round)
	fmt.Fprintf(t.w, "  cable:  %s\n", t.cable)
	fmt.Fprintf(t.w, "  devs:   %s\n", t.deviceLine())

	statuses := t.statusLine()
	if statuses != "" {
		fmt.Fprintf(t.w, "  status: %s\n", statuses)
	}

	fmt.Fprintln(t.w)
}

func (t *ConsoleTracer) deviceLine() string {
	line := []rune(strings.Repeat(" ", t.cable.Length()))
	for _, d := range t.devices {
		line[d.Position()] = rune(d.Signal())
	}
	return string(line)
}

func (t *ConsoleTracer) statusLine() string {
	parts := make([]string, 0, len(t.devices))
	for _, d := range t.devices {
		if d.Active() == nil {
			continue
		}
		parts = append(parts,
			fmt.Sprintf("%s: %s", d.Name(), d.StatusString()))
	}

	return strings.Join(parts, " | ")
}
