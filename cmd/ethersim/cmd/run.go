package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/simulation"
)

var runFlags = struct {
	length      int
	seed        int64
	devices     []string
	minPacket   int
	maxPacket   int
	monitor     bool
	monitorPort int
	open        bool
	output      string
	quiet       bool
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation with the given cable length, seed, and device ` +
		`schedules. Without --device flags, the original three-device lab ` +
		`scenario is used. Defaults can also come from ETHERSIM_* variables ` +
		`in the environment or a .env file; flags win over the environment.`,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.length, "length", 20,
		"number of cable cells")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0,
		"seed of the random source")
	runCmd.Flags().StringArrayVar(&runFlags.devices, "device", nil,
		"device spec NAME:POS:R1,R2,... (repeatable)")
	runCmd.Flags().IntVar(&runFlags.minPacket, "min-packet", 5,
		"minimum packet length in bit-rounds")
	runCmd.Flags().IntVar(&runFlags.maxPacket, "max-packet", 10,
		"maximum packet length in bit-rounds")
	runCmd.Flags().BoolVar(&runFlags.monitor, "monitor", false,
		"start the monitoring web server")
	runCmd.Flags().IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port of the monitoring web server")
	runCmd.Flags().BoolVar(&runFlags.open, "open", false,
		"open the monitoring dashboard in the browser")
	runCmd.Flags().StringVar(&runFlags.output, "output", "",
		"output file name for the recorded run, without suffix")
	runCmd.Flags().BoolVar(&runFlags.quiet, "quiet", false,
		"do not render rounds on the console")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	applyEnvDefaults(cmd)

	builder := simulation.MakeBuilder().
		WithCableLength(runFlags.length).
		WithSeed(runFlags.seed).
		WithPacketLengthRange(runFlags.minPacket, runFlags.maxPacket).
		WithOutputFileName(runFlags.output)

	builder, err := addDevices(builder)
	if err != nil {
		return err
	}

	if runFlags.open && !runFlags.monitor {
		return fmt.Errorf("--open requires --monitor")
	}

	if runFlags.monitor {
		if runFlags.monitorPort > 0 {
			builder = builder.WithMonitorPort(runFlags.monitorPort)
		}
	} else {
		builder = builder.WithoutMonitoring()
	}

	if runFlags.quiet {
		builder = builder.WithoutConsoleOutput()
	}

	s := builder.Build()
	defer s.Terminate()

	if runFlags.open {
		s.GetMonitor().OpenDashboard()
	}

	err = s.Run()
	if err != nil {
		return err
	}

	for _, d := range s.GetDevices() {
		fmt.Printf("device %s: %d/%d transmissions completed\n",
			d.Name(), d.CompletedCount(), d.ScheduledCount())
	}

	return nil
}

// applyEnvDefaults fills flags that the user did not set from ETHERSIM_*
// environment variables, optionally loaded from a .env file.
func applyEnvDefaults(cmd *cobra.Command) {
	_ = godotenv.Load()

	if v := os.Getenv("ETHERSIM_LENGTH"); v != "" &&
		!cmd.Flags().Changed("length") {
		if n, err := strconv.Atoi(v); err == nil {
			runFlags.length = n
		}
	}

	if v := os.Getenv("ETHERSIM_SEED"); v != "" &&
		!cmd.Flags().Changed("seed") {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			runFlags.seed = n
		}
	}

	if v := os.Getenv("ETHERSIM_MONITOR_PORT"); v != "" &&
		!cmd.Flags().Changed("monitor-port") {
		if n, err := strconv.Atoi(v); err == nil {
			runFlags.monitorPort = n
			runFlags.monitor = true
		}
	}
}

func addDevices(
	builder simulation.Builder,
) (simulation.Builder, error) {
	if len(runFlags.devices) == 0 {
		// The original lab scenario.
		return builder.
			AddDevice("A", 3, 1, 40, 41).
			AddDevice("B", 9, 50).
			AddDevice("C", 15, 55, 60, 80), nil
	}

	for _, spec := range runFlags.devices {
		name, pos, releases, err := parseDeviceSpec(spec)
		if err != nil {
			return builder, err
		}

		builder = builder.AddDevice(name, pos, releases...)
	}

	return builder, nil
}

// parseDeviceSpec parses a NAME:POS:R1,R2,... device flag.
func parseDeviceSpec(
	spec string,
) (name string, pos int, releases []sim.Round, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", 0, nil, fmt.Errorf(
			"device spec %q is not of the form NAME:POS:R1,R2,...", spec)
	}

	name = parts[0]

	pos, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, nil, fmt.Errorf(
			"device spec %q has an invalid position: %w", spec, err)
	}

	for _, r := range strings.Split(parts[2], ",") {
		round, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			return "", 0, nil, fmt.Errorf(
				"device spec %q has an invalid release round: %w", spec, err)
		}

		releases = append(releases, sim.Round(round))
	}

	return name, pos, releases, nil
}
