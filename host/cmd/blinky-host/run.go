package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"blinky/core"
)

var (
	runOpts = struct {
		backend     string
		chip        string
		gpiomemPath string
		cyclesPerUS uint32
		trace       bool
		instant     bool
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the blink routine",
		Long:  "Run the blink routine once against the selected register backend: 600 cycles of 500 ms high and 500 ms low on GPIO 16.",
		Args:  cobra.NoArgs,
		RunE:  runBlink,
	}
)

func init() {
	runCmd.Flags().StringVar(&runOpts.backend, "backend", "", "Register backend: sim, gpiomem, rpio or gpiod")
	runCmd.Flags().StringVar(&runOpts.chip, "chip", "", "GPIO chip for the gpiod backend")
	runCmd.Flags().StringVar(&runOpts.gpiomemPath, "gpiomem", "", "Device mapped by the gpiomem backend")
	runCmd.Flags().Uint32Var(&runOpts.cyclesPerUS, "cycles-per-us", 0, "Spin delay calibration")
	runCmd.Flags().BoolVar(&runOpts.trace, "trace", false, "Record register accesses and dump them at the end")
	runCmd.Flags().BoolVar(&runOpts.instant, "instant", false, "Skip the delays")
}

// applyRunFlags overrides configuration values with flags given on the command line
func applyRunFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = runOpts.backend
	}
	if flags.Changed("chip") {
		cfg.Chip = runOpts.chip
	}
	if flags.Changed("gpiomem") {
		cfg.GPIOMemPath = runOpts.gpiomemPath
	}
	if flags.Changed("cycles-per-us") {
		cfg.CyclesPerUS = runOpts.cyclesPerUS
	}
	if flags.Changed("trace") {
		cfg.Trace = runOpts.trace
	}
	return cfg.Validate()
}

func runBlink(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(cmd); err != nil {
		return err
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	regs := b.Registers
	if cfg.Trace {
		core.ClearTrace()
		regs = core.Trace(regs)
	}

	delay := core.SpinDelay{CyclesPerMicrosecond: cfg.CyclesPerUS}
	if runOpts.instant {
		delay.Spin = func(uint64) {}
	}

	fmt.Printf("Blinking GPIO %d on %s backend...\n", core.LEDPin, cfg.Backend)
	start := time.Now()
	status := core.Blink(regs, delay)
	fmt.Printf("Finished: status=%d elapsed=%s\n", status, time.Since(start).Round(time.Millisecond))

	if cfg.Trace {
		core.DumpTrace()
	}
	if sim, ok := b.Registers.(*core.SimRegisters); ok {
		printSimSummary(sim)
	}
	if b.Err != nil {
		return b.Err()
	}
	return nil
}

// printSimSummary prints how many writes each register received
func printSimSummary(sim *core.SimRegisters) {
	counts := make(map[uint32]int)
	for _, w := range sim.Writes() {
		counts[w.Offset]++
	}
	offsets := make([]uint32, 0, len(counts))
	for offset := range counts {
		offsets = append(offsets, offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	fmt.Println("Register writes:")
	for _, offset := range offsets {
		fmt.Printf("  %-8s %d\n", core.RegisterName(offset), counts[offset])
	}
	fmt.Printf("GPIO %d: function=%s level=%v\n", core.LEDPin, sim.Function(core.LEDPin), sim.Level(core.LEDPin))
}
