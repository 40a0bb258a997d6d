// Package cmd provides the command-line interface for EtherSim.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ethersim",
	Short: "EtherSim simulates CSMA/CD medium access on a shared cable.",
	Long: `EtherSim is a discrete-time simulator of classic shared-medium ` +
		`Ethernet. Devices attached to a linear cable contend to transmit; ` +
		`signals propagate one cell per round in both directions, collide ` +
		`where they meet, and colliding devices back off and retransmit.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
