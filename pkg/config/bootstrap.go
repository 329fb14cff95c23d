package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BootstrapConfig holds the initial configuration loaded from
// controller_config.yaml: everything the process needs before the
// operational robot config is available.
type BootstrapConfig struct {
	Logging    LoggingConfig         `yaml:"logging"`
	Server     BootstrapServerConfig `yaml:"server"`
	ZeroMQ     ZeroMQBootstrap       `yaml:"zeromq"`
	Data       DataConfig            `yaml:"data"`
	Processing ProcessingConfig      `yaml:"processing"`
	Control    ControlConfig         `yaml:"control"`
}

// LoggingConfig holds logging settings from bootstrap.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// BootstrapServerConfig holds bootstrap HTTP server settings.
type BootstrapServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// ZeroMQBootstrap holds ZeroMQ settings from bootstrap.
type ZeroMQBootstrap struct {
	RequestBindAddress   string `yaml:"request_bind_address"`
	PublishBindAddress   string `yaml:"publish_bind_address"`
	TelemetryBindAddress string `yaml:"telemetry_bind_address"`
	MessageBufferSize    int    `yaml:"message_buffer_size"`
	ReconnectIntervalMs  int    `yaml:"reconnect_interval_ms"`
}

// ProcessingConfig holds telemetry worker configuration from bootstrap.
type ProcessingConfig struct {
	HighPriorityWorkers     int `yaml:"high_priority_workers"`
	StandardPriorityWorkers int `yaml:"standard_priority_workers"`
	LowPriorityWorkers      int `yaml:"low_priority_workers"`
}

// ControlConfig holds control loop settings from bootstrap.
type ControlConfig struct {
	// RateMs is the control loop period in milliseconds.
	RateMs int `yaml:"rate_ms"`
}

// DataConfig holds data directory settings from bootstrap.
type DataConfig struct {
	Directory           string `yaml:"directory"`
	RobotConfigFilename string `yaml:"robot_config_file"`
}

// LoadBootstrapConfig loads the bootstrap configuration from
// controller_config.yaml in the given directory.
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, "controller_config.yaml")

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if bootstrapCfg.ZeroMQ.RequestBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.request_bind_address")
	}
	if bootstrapCfg.ZeroMQ.PublishBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.publish_bind_address")
	}
	if bootstrapCfg.ZeroMQ.TelemetryBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.telemetry_bind_address")
	}
	if bootstrapCfg.Data.Directory == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.directory")
	}
	if bootstrapCfg.Data.RobotConfigFilename == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.robot_config_file")
	}
	if bootstrapCfg.Control.RateMs <= 0 {
		bootstrapCfg.Control.RateMs = 100
	}

	return &bootstrapCfg, nil
}
