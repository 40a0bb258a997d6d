// Package simulation wires the medium, the devices, the engine, and the
// observers into one runnable CSMA/CD simulation.
package simulation

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/monitoring"
	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/tracing"
)

// A DeviceSpec describes one device to be attached to the cable.
type DeviceSpec struct {
	Name     string
	Position int
	Releases []sim.Round
}

// Builder can be used to build a simulation.
type Builder struct {
	cableLength    int
	seed           int64
	minPacketLen   int
	maxPacketLen   int
	roundLimit     sim.Round
	deviceSpecs    []DeviceSpec
	monitorOn      bool
	monitorPort    int
	consoleWriter  io.Writer
	outputFileName string
}

// MakeBuilder creates a new builder with the original lab defaults: a cable
// of 20 cells and packet lengths drawn from [5, 10].
func MakeBuilder() Builder {
	return Builder{
		cableLength:   ether.DefaultCableLength,
		minPacketLen:  5,
		maxPacketLen:  10,
		monitorOn:     true,
		consoleWriter: os.Stdout,
	}
}

// WithCableLength sets the number of cells of the cable.
func (b Builder) WithCableLength(length int) Builder {
	b.cableLength = length
	return b
}

// WithSeed sets the seed of the random source that drives packet lengths and
// backoff draws. Two runs with the same configuration and seed produce the
// same per-round states.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithPacketLengthRange sets the inclusive range packet lengths are drawn
// from.
func (b Builder) WithPacketLengthRange(minLen, maxLen int) Builder {
	b.minPacketLen = minLen
	b.maxPacketLen = maxLen
	return b
}

// WithRoundLimit makes Run fail once the given number of rounds is exceeded.
// A limit of 0 means no limit.
func (b Builder) WithRoundLimit(limit sim.Round) Builder {
	b.roundLimit = limit
	return b
}

// AddDevice attaches a device at the given cable position with the given
// release rounds.
func (b Builder) AddDevice(
	name string,
	pos int,
	releases ...sim.Round,
) Builder {
	b.deviceSpecs = append(b.deviceSpecs, DeviceSpec{
		Name:     name,
		Position: pos,
		Releases: releases,
	})
	return b
}

// WithoutMonitoring sets the simulation to not start the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithConsoleWriter sets the writer that the per-round rendering goes to.
func (b Builder) WithConsoleWriter(w io.Writer) Builder {
	b.consoleWriter = w
	return b
}

// WithoutConsoleOutput disables the per-round rendering.
func (b Builder) WithoutConsoleOutput() Builder {
	b.consoleWriter = nil
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.cableLength <= 0 {
		panic(fmt.Sprintf(
			"cable length must be positive, got %d", b.cableLength))
	}

	if len(b.deviceSpecs) == 0 {
		panic("simulation requires at least one device")
	}

	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	names := make(map[string]bool)
	positions := make(map[int]bool)
	for _, spec := range b.deviceSpecs {
		if names[spec.Name] {
			panic(fmt.Sprintf("duplicated device name %s", spec.Name))
		}
		names[spec.Name] = true

		if positions[spec.Position] {
			panic(fmt.Sprintf(
				"two devices cannot share cable position %d", spec.Position))
		}
		positions[spec.Position] = true
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id: xid.New().String(),
	}

	engine := sim.NewRoundEngine().WithRoundLimit(b.roundLimit)
	s.engine = engine

	s.cable = ether.NewCable(b.cableLength)
	engine.RegisterBarrier(s.cable)

	rng := rand.New(rand.NewSource(b.seed))
	for _, spec := range b.deviceSpecs {
		d := device.MakeBuilder().
			WithCable(s.cable).
			WithRand(rng).
			WithPosition(spec.Position).
			WithReleaseRounds(spec.Releases...).
			WithPacketLengthRange(b.minPacketLen, b.maxPacketLen).
			Build(spec.Name)

		s.devices = append(s.devices, d)
		engine.RegisterAgent(d)
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "ethersim_run_" + s.id
	}
	s.dataRecorder = datarecording.NewDataRecorder(outputPath)

	s.dbTracer = tracing.NewDBTracer(s.dataRecorder, s.cable, s.devices)
	b.attachTracer(s, s.dbTracer)

	if b.consoleWriter != nil {
		console := tracing.NewConsoleTracer(
			b.consoleWriter, s.cable, s.devices)
		b.attachTracer(s, console)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterCable(s.cable)
		for _, d := range s.devices {
			s.monitor.RegisterDevice(d)
		}
		s.monitor.StartServer()
	}

	return s
}

func (b Builder) attachTracer(s *Simulation, hook sim.Hook) {
	tracing.CollectTrace(s.engine, hook)
	for _, d := range s.devices {
		tracing.CollectTrace(d, hook)
	}
}
