package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blinky/host/loader"
	"blinky/host/serial"
	"blinky/protocol"
)

var (
	transferOpts = struct {
		device  string
		baud    int
		timeout int
	}{}

	sendCmd = &cobra.Command{
		Use:   "send <image>",
		Short: "Send a kernel image to the Pi bootloader",
		Long:  "Send a kernel image over the serial link with XMODEM. Reset the Pi after starting the command; the transfer begins on the bootloader's first NAK.",
		Args:  cobra.ExactArgs(1),
		RunE:  sendImage,
	}

	recvCmd = &cobra.Command{
		Use:   "recv <output>",
		Short: "Receive an XMODEM transfer into a file",
		Args:  cobra.ExactArgs(1),
		RunE:  receiveImage,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{sendCmd, recvCmd} {
		cmd.Flags().StringVarP(&transferOpts.device, "device", "d", "", "Serial device path")
		cmd.Flags().IntVarP(&transferOpts.baud, "baud", "b", 0, "Baud rate")
		cmd.Flags().IntVarP(&transferOpts.timeout, "timeout", "t", 0, "Read timeout in milliseconds")
	}
}

// serialConfig builds the port configuration from the config file and flags
func serialConfig(cmd *cobra.Command) (*serial.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Device = transferOpts.device
	}
	if flags.Changed("baud") {
		cfg.Baud = transferOpts.baud
	}
	if flags.Changed("timeout") {
		cfg.ReadTimeoutMS = transferOpts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeoutMS,
	}, nil
}

// progressPrinter reports transfer progress on stdout. XMODEM packet
// numbers wrap at 256, so packets are counted here instead.
func progressPrinter() protocol.ProgressFunc {
	packets := 0
	return func(p protocol.Progress) {
		switch p.Stage {
		case protocol.StageWaiting:
			fmt.Println("Waiting for receiver...")
		case protocol.StageStarted:
			fmt.Println("Transfer started")
		case protocol.StagePacket:
			packets++
			fmt.Printf("\r  %d packets (%d bytes)", packets, packets*protocol.PacketSize)
		}
	}
}

func sendImage(cmd *cobra.Command, args []string) error {
	serialCfg, err := serialConfig(cmd)
	if err != nil {
		return err
	}

	image, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer image.Close()

	l := loader.NewLoader()
	fmt.Printf("Connecting to %s at %d baud...\n", serialCfg.Device, serialCfg.Baud)
	if err := l.ConnectWithConfig(serialCfg); err != nil {
		return err
	}
	defer l.Close()

	n, err := l.SendImage(image, progressPrinter())
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("Sent %d bytes\n", n)
	return nil
}

func receiveImage(cmd *cobra.Command, args []string) error {
	serialCfg, err := serialConfig(cmd)
	if err != nil {
		return err
	}

	out, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	l := loader.NewLoader()
	fmt.Printf("Connecting to %s at %d baud...\n", serialCfg.Device, serialCfg.Baud)
	if err := l.ConnectWithConfig(serialCfg); err != nil {
		return err
	}
	defer l.Close()

	n, err := l.ReceiveImage(out, progressPrinter())
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("Received %d bytes\n", n)
	return out.Sync()
}
