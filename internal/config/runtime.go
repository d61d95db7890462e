package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// RuntimeConfig holds the operator-level settings that govern how the
// grindctl process runs, as distinct from MachineConfig's description of
// the physical machine. It is sourced from (in increasing priority)
// compiled-in defaults, an optional config file, and environment
// variables prefixed GOGRIND_.
type RuntimeConfig struct {
	// MachineConfigPath is where the MachineConfig YAML lives.
	MachineConfigPath string
	// GPIOChipOverride, if non-empty, replaces MachineConfig.GPIOChip -
	// useful for pointing at a different chardev on a dev box.
	GPIOChipOverride string
	// HTTPAddr is the listen address for the optional UI/API server.
	HTTPAddr string
	// LogLevel is one of debug/info/warn/error.
	LogLevel string
	// LogFormat is either "console" or "json".
	LogFormat string
	// LogFilePath, if set, replaces the logger's default log directory
	// (./logs); rotated logs are written there as gogrind.log through
	// lumberjack, alongside the console output on stdout.
	LogFilePath string
}

// DefaultRuntimeConfig returns the compiled-in runtime defaults.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		MachineConfigPath: "machine.yaml",
		HTTPAddr:          ":8090",
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// LoadRuntimeConfig builds a viper instance layering defaults, an
// optional config file at configPath (any viper-supported format; missing
// file is not an error), and GOGRIND_-prefixed environment variables.
func LoadRuntimeConfig(configPath string) (RuntimeConfig, error) {
	defaults := DefaultRuntimeConfig()

	v := viper.New()
	v.SetEnvPrefix("gogrind")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("machine_config_path", defaults.MachineConfigPath)
	v.SetDefault("gpio_chip_override", defaults.GPIOChipOverride)
	v.SetDefault("http_addr", defaults.HTTPAddr)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("log_file_path", defaults.LogFilePath)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, os.ErrNotExist) {
				return RuntimeConfig{}, fmt.Errorf("reading runtime config %s: %w", configPath, err)
			}
		}
	}

	cfg := RuntimeConfig{
		MachineConfigPath: v.GetString("machine_config_path"),
		GPIOChipOverride:  v.GetString("gpio_chip_override"),
		HTTPAddr:          v.GetString("http_addr"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		LogFilePath:       v.GetString("log_file_path"),
	}
	return cfg, nil
}
