package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Register backends the host tool can drive
const (
	BackendSim     = "sim"     // Simulated register file
	BackendGPIOMem = "gpiomem" // mmap of /dev/gpiomem
	BackendRPIO    = "rpio"    // go-rpio pin driver
	BackendGPIOD   = "gpiod"   // GPIO character device
)

// Config is the host tool configuration
type Config struct {
	Backend       string `json:"backend"`         // One of the Backend* names
	GPIOMemPath   string `json:"gpiomem_path"`    // Device mapped by the gpiomem backend
	Chip          string `json:"chip"`            // GPIO chip for the gpiod backend
	CyclesPerUS   uint32 `json:"cycles_per_us"`   // Spin delay calibration
	Trace         bool   `json:"trace"`           // Record register accesses
	Verbose       bool   `json:"verbose"`         // Enable debug output
	Device        string `json:"device"`          // Serial device for image transfer
	Baud          int    `json:"baud"`            // Serial baud rate
	ReadTimeoutMS int    `json:"read_timeout_ms"` // Serial read timeout
}

// Load parses a JSON configuration and applies defaults
func Load(jsonData []byte) (*Config, error) {
	var config Config

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var config Config
	ApplyDefaults(&config)
	return &config
}

// ApplyDefaults fills in missing configuration values
func ApplyDefaults(config *Config) {
	if config.Backend == "" {
		config.Backend = BackendSim
	}
	if config.GPIOMemPath == "" {
		config.GPIOMemPath = "/dev/gpiomem"
	}
	if config.Chip == "" {
		config.Chip = "gpiochip0"
	}
	if config.CyclesPerUS == 0 {
		config.CyclesPerUS = 6
	}
	if config.Device == "" {
		config.Device = "/dev/ttyUSB0"
	}
	if config.Baud == 0 {
		config.Baud = 115200
	}
	if config.ReadTimeoutMS == 0 {
		config.ReadTimeoutMS = 10000
	}
}

// Validate checks the configuration for values the tool cannot use
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSim, BackendGPIOMem, BackendRPIO, BackendGPIOD:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Baud < 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeoutMS < 0 {
		return fmt.Errorf("invalid read timeout %d", c.ReadTimeoutMS)
	}
	return nil
}
