package device

import (
	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

// HookPosTransmissionStart triggers when a device pops a scheduled
// transmission and makes it active. The Item is the *Transmission, the Detail
// is the device's current Round.
var HookPosTransmissionStart = &sim.HookPos{Name: "TransmissionStart"}

// HookPosTransmissionDone triggers when the active transmission reports
// completion. The Item is the *Transmission, the Detail is the device's
// current Round.
var HookPosTransmissionDone = &sim.HookPos{Name: "TransmissionDone"}

// A scheduleEntry is one planned transmission attempt. Entries are released
// in order; an entry never starts before its release round.
type scheduleEntry struct {
	release      sim.Round
	transmission *Transmission
}

// A Device is a station attached to the cable at a fixed position. It owns a
// schedule of transmission attempts and at most one active transmission, and
// is refreshed once per round by the engine.
type Device struct {
	sim.HookableBase

	name   string
	signal ether.Signal
	pos    int
	cable  *ether.Cable

	round     sim.Round
	schedule  []scheduleEntry
	nextEntry int
	active    *Transmission

	completed int
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// Signal returns the signal identifier the device puts on the cable.
func (d *Device) Signal() ether.Signal {
	return d.signal
}

// Position returns the cable cell the device is attached to.
func (d *Device) Position() int {
	return d.pos
}

// CurrentRound returns the device's round counter.
func (d *Device) CurrentRound() sim.Round {
	return d.round
}

// Active returns the currently active transmission, or nil when the device is
// idle.
func (d *Device) Active() *Transmission {
	return d.active
}

// ScheduledCount returns the total number of scheduled transmission attempts.
func (d *Device) ScheduledCount() int {
	return len(d.schedule)
}

// CompletedCount returns the number of successfully completed transmissions.
func (d *Device) CompletedCount() int {
	return d.completed
}

// Refresh advances the device by one round against the post-propagation cable
// snapshot. It drives the active transmission if there is one, and otherwise
// releases the next scheduled attempt once its round has come. It returns
// false when the schedule is exhausted and no transmission is active.
func (d *Device) Refresh() bool {
	d.round++

	if d.active != nil {
		if !d.active.Transmit(d.cable) {
			return true
		}

		d.completed++
		done := d.active
		d.active = nil
		d.InvokeHook(sim.HookCtx{
			Domain: d,
			Pos:    HookPosTransmissionDone,
			Item:   done,
			Detail: d.round,
		})
	}

	if d.nextEntry < len(d.schedule) {
		entry := d.schedule[d.nextEntry]
		if d.round >= entry.release {
			d.nextEntry++
			d.active = entry.transmission
			d.InvokeHook(sim.HookCtx{
				Domain: d,
				Pos:    HookPosTransmissionStart,
				Item:   d.active,
				Detail: d.round,
			})

			// A transmission competes for the cable in the very round it
			// starts.
			d.active.Transmit(d.cable)
		}

		return true
	}

	return d.active != nil
}

// StatusString renders the device state for per-round reporting.
func (d *Device) StatusString() string {
	if d.active == nil {
		return "idle"
	}
	return d.active.StatusString()
}
