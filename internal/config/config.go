// Package config loads the daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/alarmd/internal/gpio"
	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/registry"
)

// Hardware backends.
const (
	BackendPin      = "pin"
	BackendPort     = "port"
	BackendExpander = "expander"
)

// Marker stores.
const (
	StoreDir   = "dir"
	StoreRedis = "redis"
)

// Config is the complete daemon configuration.
type Config struct {
	Tick      time.Duration `yaml:"tick"`
	Heartbeat time.Duration `yaml:"heartbeat"`
	HTTPAddr  string        `yaml:"http_addr"`
	Hardware  Hardware      `yaml:"hardware"`
	Markers   Markers       `yaml:"markers"`
	MQTT      MQTT          `yaml:"mqtt"`
	Commands  []Command     `yaml:"commands"`

	// Bits replaces the built-in table for the backend when non-empty.
	Bits []registry.Spec `yaml:"bits"`
}

// Hardware selects and configures the I/O backend.
type Hardware struct {
	Backend string `yaml:"backend"`

	// Pin backend.
	Chip     string        `yaml:"chip"`
	Debounce time.Duration `yaml:"debounce"`

	// Port backend, one node per port index.
	Ports []gpio.PortNode `yaml:"ports"`

	// Expander backend. Outputs are the output-direction masks of ports A and B.
	Bus     string   `yaml:"i2c_bus"`
	Address uint16   `yaml:"i2c_address"`
	Outputs [2]uint8 `yaml:"outputs"`
}

// Markers locates the command, override and fault markers.
type Markers struct {
	Store      string `yaml:"store"`
	CommandDir string `yaml:"command_dir"`
	DisableDir string `yaml:"disable_dir"`
	SensorDir  string `yaml:"sensor_dir"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

// MQTT configures event publishing. An empty broker disables it.
type MQTT struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// Command is one row of the command table. Key is a single character.
type Command struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cmds := logic.DefaultCommands()
	rows := make([]Command, len(cmds))
	for i, c := range cmds {
		rows[i] = Command{Key: string(c.Key), Name: c.Name, Symbol: c.Symbol}
	}
	return Config{
		Tick:      logic.DefaultTick,
		Heartbeat: 15 * time.Minute,
		HTTPAddr:  ":8080",
		Hardware: Hardware{
			Backend:  BackendPin,
			Chip:     "gpiochip0",
			Debounce: 200 * time.Millisecond,
			Ports: []gpio.PortNode{
				{Path: "/dev/pbio0a"},
				{Path: "/dev/pbio0b", Writable: true},
				{Path: "/dev/pbio0ch"},
				{Path: "/dev/pbio0cl"},
			},
			Address: gpio.DefaultExpanderAddr,
			Outputs: [2]uint8{0x00, 0xFF},
		},
		Markers: Markers{
			Store:       StoreDir,
			CommandDir:  "/var/spool/alarm/cmd",
			DisableDir:  "/var/spool/alarm/disable",
			SensorDir:   "/var/spool/alarm/sensor",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "alarm:",
		},
		MQTT: MQTT{
			ClientID: "alarmd",
		},
		Commands: rows,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors that would stop the daemon.
func (c Config) Validate() error {
	var errs []error
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", c.Tick))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}

	switch c.Hardware.Backend {
	case BackendPin:
		if c.Hardware.Chip == "" {
			errs = append(errs, errors.New("hardware.chip is required for the pin backend"))
		}
	case BackendPort:
		if len(c.Hardware.Ports) == 0 {
			errs = append(errs, errors.New("hardware.ports is required for the port backend"))
		}
	case BackendExpander:
		if len(c.Bits) == 0 {
			errs = append(errs, errors.New("bits is required for the expander backend"))
		}
		for i, b := range c.Bits {
			if b.Address.Port < 0 || b.Address.Port > 1 {
				errs = append(errs, fmt.Errorf("bits[%d]: expander has ports 0 and 1, got %d", i, b.Address.Port))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown hardware.backend %q", c.Hardware.Backend))
	}

	switch c.Markers.Store {
	case StoreDir:
		if c.Markers.CommandDir == "" || c.Markers.DisableDir == "" || c.Markers.SensorDir == "" {
			errs = append(errs, errors.New("markers: command_dir, disable_dir and sensor_dir are required"))
		}
	case StoreRedis:
		if c.Markers.RedisAddr == "" {
			errs = append(errs, errors.New("markers.redis_addr is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown markers.store %q", c.Markers.Store))
	}

	seen := make(map[string]bool)
	for i, cmd := range c.Commands {
		if utf8.RuneCountInString(cmd.Key) != 1 {
			errs = append(errs, fmt.Errorf("commands[%d]: key must be one character, got %q", i, cmd.Key))
		}
		if cmd.Symbol == "" {
			errs = append(errs, fmt.Errorf("commands[%d]: empty symbol", i))
		}
		if seen[cmd.Symbol] {
			errs = append(errs, fmt.Errorf("commands[%d]: duplicate symbol %q", i, cmd.Symbol))
		}
		seen[cmd.Symbol] = true
	}

	if len(c.Bits) > 0 {
		if _, err := registry.New(c.Bits); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Table returns the bit table: the configured rows, or the built-in table
// matching the backend.
func (c Config) Table() []registry.Spec {
	if len(c.Bits) > 0 {
		return c.Bits
	}
	if c.Hardware.Backend == BackendPin {
		return registry.DefaultPinTable()
	}
	return registry.DefaultPortTable()
}

// LogicCommands converts the command table for the engine.
func (c Config) LogicCommands() []logic.Command {
	out := make([]logic.Command, len(c.Commands))
	for i, cmd := range c.Commands {
		key, _ := utf8.DecodeRuneInString(cmd.Key)
		out[i] = logic.Command{Key: key, Name: cmd.Name, Symbol: cmd.Symbol}
	}
	return out
}
