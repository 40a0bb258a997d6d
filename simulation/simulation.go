package simulation

import (
	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/monitoring"
	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/tracing"
)

// A Simulation owns the cable, the devices, and the engine, and runs rounds
// until every device has worked through its schedule.
type Simulation struct {
	id string

	engine sim.Engine
	cable  *ether.Cable

	devices []*device.Device

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	dbTracer     *tracing.DBTracer
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetCable returns the cable that the devices share.
func (s *Simulation) GetCable() *ether.Cable {
	return s.cable
}

// GetDevices returns the devices of the simulation.
func (s *Simulation) GetDevices() []*device.Device {
	return s.devices
}

// GetDeviceByName returns the device with the given name, or nil.
func (s *Simulation) GetDeviceByName(name string) *device.Device {
	for _, d := range s.devices {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, or nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Run advances rounds until every device finishes, then invokes the
// registered simulation end handlers.
func (s *Simulation) Run() error {
	err := s.engine.Run()
	if err != nil {
		return err
	}

	s.engine.Finished()

	return nil
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() {
	s.dataRecorder.Close()
}
