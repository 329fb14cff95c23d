package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	configContent := `
version: "1.0"
config_id: "test-pheeno-config"
lastUpdated: "2026-01-01T00:00:00Z"
robot_id: "pheeno-test"

velocity_profile:
  default_linear: 0.5
  obstacle_linear: 0.3
  obstacle_angular: 0.4

avoidance:
  range: 10.0
  variant: "move"

channel_mappings:
  - channel: "pheeno.ir.center"
    kind: "proximity"
    target: "center"
    priority: "HIGH"
  - channel: "pheeno.encoder.ll"
    kind: "encoder"
    target: "LL"
  - channel: "pheeno.odom"
    kind: "odometry"

defaults:
  priority: "STANDARD"
`

	config, err := LoadConfig(writeTempConfig(t, configContent))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", config.Version)
	}
	if config.ConfigID != "test-pheeno-config" {
		t.Errorf("Expected config_id test-pheeno-config, got %s", config.ConfigID)
	}
	if config.RobotID != "pheeno-test" {
		t.Errorf("Expected robot_id pheeno-test, got %s", config.RobotID)
	}
	if config.Avoidance.Range != 10.0 {
		t.Errorf("Expected avoidance range 10.0, got %v", config.Avoidance.Range)
	}
	if config.Avoidance.Variant != VariantMoveTurn {
		t.Errorf("Expected avoidance variant move, got %s", config.Avoidance.Variant)
	}
	if len(config.ChannelMappings) != 3 {
		t.Errorf("Expected 3 channel mappings, got %d", len(config.ChannelMappings))
	}
}

func TestProfileConfigResolve(t *testing.T) {
	half := 0.5
	three := 0.3

	// Omitted parameters resolve to 0.5; explicit values pass through.
	p := ProfileConfig{ObstacleLinear: &three}
	defLin, defAng, obsLin, obsAng := p.Resolve()
	if defLin != half || defAng != half || obsAng != half {
		t.Errorf("Expected omitted parameters to resolve to 0.5, got %v %v %v", defLin, defAng, obsAng)
	}
	if obsLin != 0.3 {
		t.Errorf("Expected explicit obstacle linear 0.3, got %v", obsLin)
	}

	// An explicit zero is not the same as omitted.
	zero := 0.0
	p = ProfileConfig{DefaultLinear: &zero}
	defLin, _, _, _ = p.Resolve()
	if defLin != 0 {
		t.Errorf("Expected explicit zero to survive, got %v", defLin)
	}
}

func TestValidateRejectsBadVariant(t *testing.T) {
	cfg := &Config{Avoidance: AvoidanceConfig{Variant: "sideways"}}
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for unknown avoidance variant")
	}
}

func TestValidateRejectsBadKind(t *testing.T) {
	cfg := &Config{
		ChannelMappings: []ChannelMapping{
			{Channel: "pheeno.sonar", Kind: "sonar"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for unknown channel kind")
	}
}

func TestValidateRequiresTarget(t *testing.T) {
	cfg := &Config{
		ChannelMappings: []ChannelMapping{
			{Channel: "pheeno.ir.center", Kind: KindProximity},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for proximity mapping without target")
	}
}

func TestChannelMappingHelpers(t *testing.T) {
	cfg := &Config{
		ChannelMappings: []ChannelMapping{
			{Channel: "pheeno.ir.center", Kind: KindProximity, Target: "center", Priority: "HIGH"},
			{Channel: "pheeno.encoder.ll", Kind: KindEncoder, Target: "LL"},
			{Channel: "pheeno.odom", Kind: KindOdometry},
		},
		Defaults: DefaultsConfig{Priority: "STANDARD"},
	}

	mapping, found := cfg.GetChannelMapping("pheeno.ir.center")
	if !found {
		t.Fatalf("Expected to find pheeno.ir.center mapping")
	}
	if mapping.Priority != "HIGH" {
		t.Errorf("Expected HIGH priority, got %s", mapping.Priority)
	}

	// Default priority applied where the mapping omits it.
	mapping, found = cfg.GetChannelMapping("pheeno.encoder.ll")
	if !found {
		t.Fatalf("Expected to find pheeno.encoder.ll mapping")
	}
	if mapping.Priority != "STANDARD" {
		t.Errorf("Expected default STANDARD priority, got %s", mapping.Priority)
	}

	if _, found = cfg.GetChannelMapping("pheeno.nonexistent"); found {
		t.Errorf("Expected not to find pheeno.nonexistent mapping")
	}

	proximity := cfg.GetChannelMappingsByKind(KindProximity)
	if len(proximity) != 1 || proximity[0].Target != "center" {
		t.Errorf("Unexpected proximity mappings: %+v", proximity)
	}
}

func TestLoadBootstrapConfig(t *testing.T) {
	tempDir := t.TempDir()

	bootstrapContent := `
logging:
  level: "debug"
  log_path: "/var/log/pheeno"
server:
  http_port: 9090
zeromq:
  request_bind_address: "tcp://*:6666"
  publish_bind_address: "tcp://*:7777"
  telemetry_bind_address: "tcp://*:8888"
  message_buffer_size: 2000
  reconnect_interval_ms: 500
data:
  directory: "/data/pheeno"
  robot_config_file: "my_pheeno_config.yaml"
processing:
  high_priority_workers: 5
  standard_priority_workers: 3
  low_priority_workers: 2
control:
  rate_ms: 50
`
	configPath := filepath.Join(tempDir, "controller_config.yaml")
	if err := os.WriteFile(configPath, []byte(bootstrapContent), 0644); err != nil {
		t.Fatalf("Failed to write test bootstrap config: %v", err)
	}

	bootstrapCfg, err := LoadBootstrapConfig(tempDir)
	if err != nil {
		t.Fatalf("LoadBootstrapConfig failed: %v", err)
	}

	if bootstrapCfg.Logging.Level != "debug" {
		t.Errorf("Expected logging level 'debug', got '%s'", bootstrapCfg.Logging.Level)
	}
	if bootstrapCfg.Server.HTTPPort != 9090 {
		t.Errorf("Expected server http_port 9090, got %d", bootstrapCfg.Server.HTTPPort)
	}
	if bootstrapCfg.ZeroMQ.TelemetryBindAddress != "tcp://*:8888" {
		t.Errorf("Expected zeromq telemetry_bind_address 'tcp://*:8888', got '%s'", bootstrapCfg.ZeroMQ.TelemetryBindAddress)
	}
	if bootstrapCfg.Data.RobotConfigFilename != "my_pheeno_config.yaml" {
		t.Errorf("Expected data robot_config_file 'my_pheeno_config.yaml', got '%s'", bootstrapCfg.Data.RobotConfigFilename)
	}
	if bootstrapCfg.Processing.HighPriorityWorkers != 5 {
		t.Errorf("Expected processing high_priority_workers 5, got %d", bootstrapCfg.Processing.HighPriorityWorkers)
	}
	if bootstrapCfg.Control.RateMs != 50 {
		t.Errorf("Expected control rate_ms 50, got %d", bootstrapCfg.Control.RateMs)
	}
}

func TestLoadBootstrapConfigDefaultsControlRate(t *testing.T) {
	tempDir := t.TempDir()

	bootstrapContent := `
logging:
  level: "info"
zeromq:
  request_bind_address: "tcp://*:5555"
  publish_bind_address: "tcp://*:5556"
  telemetry_bind_address: "tcp://*:5557"
data:
  directory: "config"
  robot_config_file: "pheeno_config.yaml"
`
	configPath := filepath.Join(tempDir, "controller_config.yaml")
	if err := os.WriteFile(configPath, []byte(bootstrapContent), 0644); err != nil {
		t.Fatalf("Failed to write test bootstrap config: %v", err)
	}

	bootstrapCfg, err := LoadBootstrapConfig(tempDir)
	if err != nil {
		t.Fatalf("LoadBootstrapConfig failed: %v", err)
	}
	if bootstrapCfg.Control.RateMs != 100 {
		t.Errorf("Expected control rate_ms to default to 100, got %d", bootstrapCfg.Control.RateMs)
	}
}

func TestLoadBootstrapConfigMissingRequired(t *testing.T) {
	tempDir := t.TempDir()

	// Missing 'zeromq.telemetry_bind_address'
	bootstrapContentMissing := `
logging:
  level: "info"
zeromq:
  request_bind_address: "tcp://*:5555"
  publish_bind_address: "tcp://*:5556"
data:
  directory: "config"
  robot_config_file: "pheeno_config.yaml"
`
	configPath := filepath.Join(tempDir, "controller_config.yaml")
	if err := os.WriteFile(configPath, []byte(bootstrapContentMissing), 0644); err != nil {
		t.Fatalf("Failed to write test bootstrap config: %v", err)
	}

	_, err := LoadBootstrapConfig(tempDir)
	if err == nil {
		t.Fatalf("Expected error when loading bootstrap config with missing required fields, but got nil")
	}

	expectedErrorSubstr := "missing required field in bootstrap config: zeromq.telemetry_bind_address"
	if !strings.Contains(err.Error(), expectedErrorSubstr) {
		t.Errorf("Expected error message to contain '%s', but got: %v", expectedErrorSubstr, err)
	}
}
