// Package monitoring turns a running simulation into a small web server that
// can pause and continue the run and inspect the cable and device states.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/ether"
	"github.com/sarchlab/ethersim/sim"
)

// Monitor allows external monitoring and controlling of a simulation over
// HTTP. It is strictly an observer plus the engine's pause/continue switch;
// it cannot alter the medium or the device states.
type Monitor struct {
	engine     sim.Engine
	cable      *ether.Cable
	devices    []*device.Device
	portNumber int
	url        string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterCable registers the cable to be monitored.
func (m *Monitor) RegisterCable(c *ether.Cable) {
	m.cable = c
}

// RegisterDevice registers a device to be monitored.
func (m *Monitor) RegisterDevice(d *device.Device) {
	m.devices = append(m.devices, d)
}

// URL returns the address the monitor serves at. It is only valid after
// StartServer has been called.
func (m *Monitor) URL() string {
	return m.url
}

// StartServer starts the monitor as a web server, on the configured port or
// on a random free one.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/cable", m.cableState)
	r.HandleFunc("/api/devices", m.listDevices)
	r.HandleFunc("/api/devices/{name}", m.listDeviceDetails)
	r.HandleFunc("/api/resources", m.listResources)
	r.HandleFunc("/", m.dashboard)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the dashboard in the system browser.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		panic("the monitoring server is not started yet")
	}

	err := browser.OpenURL(m.url)
	dieOnErr(err)
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"round\":%d}", m.engine.CurrentRound())
}

type cellRsp struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type cableRsp struct {
	Round   sim.Round `json:"round"`
	Display string    `json:"display"`
	Cells   []cellRsp `json:"cells"`
}

func (m *Monitor) cableState(w http.ResponseWriter, _ *http.Request) {
	snapshot := m.cable.Snapshot()

	rsp := cableRsp{
		Round:   m.engine.CurrentRound(),
		Display: m.cable.String(),
		Cells:   make([]cellRsp, 0, len(snapshot)),
	}

	for _, cell := range snapshot {
		rsp.Cells = append(rsp.Cells, cellRsp{
			Left:  string(cell.Left.Rune()),
			Right: string(cell.Right.Rune()),
		})
	}

	writeJSON(w, rsp)
}

type deviceRsp struct {
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Status    string `json:"status"`
	Scheduled int    `json:"scheduled"`
	Completed int    `json:"completed"`
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	rsp := make([]deviceRsp, 0, len(m.devices))
	for _, d := range m.devices {
		rsp = append(rsp, deviceRsp{
			Name:      d.Name(),
			Position:  d.Position(),
			Status:    d.StatusString(),
			Scheduled: d.ScheduledCount(),
			Completed: d.CompletedCount(),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listDeviceDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	d := m.findDeviceOr404(w, name)
	if d == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(d)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) *device.Device {
	for _, d := range m.devices {
		if d.Name() == name {
			return d
		}
	}

	w.WriteHeader(http.StatusNotFound)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
