// blinky-host runs the blink routine against host GPIO backends and pushes
// kernel images to the Pi bootloader over a serial link.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"blinky/core"
	"blinky/host/config"
)

var (
	rootOpts = struct {
		configPath string
		verbose    bool
	}{}

	// cfg is loaded before any subcommand runs
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:               "blinky-host",
		Short:             "Host tools for the blinky kernel",
		Long:              "Run the blink routine against a simulated or real GPIO block, or transfer kernel images to the Pi bootloader with XMODEM.",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.configPath, "config", "", "JSON configuration file")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "Enable debug output")

	rootCmd.AddCommand(runCmd, sendCmd, recvCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if rootOpts.configPath != "" {
		cfg, err = config.LoadFile(rootOpts.configPath)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}
	if rootOpts.verbose {
		cfg.Verbose = true
	}

	setupLogging(cfg.Verbose)
	return nil
}

// setupLogging routes core debug output to the standard logger
func setupLogging(verbose bool) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	core.SetDebugWriter(func(s string) { log.Println(s) })
	core.SetDebugEnabled(verbose)
	if verbose {
		core.InitAsyncDebug()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
