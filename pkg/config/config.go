package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Channel kinds used in channel mappings.
const (
	KindProximity     = "proximity"
	KindEncoder       = "encoder"
	KindOdometry      = "odometry"
	KindMagnetometer  = "magnetometer"
	KindGyroscope     = "gyroscope"
	KindAccelerometer = "accelerometer"
)

// Avoidance variants.
const (
	VariantMoveTurn = "move"
	VariantStopTurn = "stop"
)

// Config is the operational robot configuration. It is loaded at startup
// and can be replaced at runtime through the config API.
type Config struct {
	Version         string           `yaml:"version" json:"version"`
	ConfigID        string           `yaml:"config_id" json:"config_id"`
	LastUpdated     string           `yaml:"lastUpdated" json:"lastUpdated"`
	RobotID         string           `yaml:"robot_id" json:"robot_id"`
	VelocityProfile ProfileConfig    `yaml:"velocity_profile" json:"velocity_profile"`
	Avoidance       AvoidanceConfig  `yaml:"avoidance" json:"avoidance"`
	ChannelMappings []ChannelMapping `yaml:"channel_mappings" json:"channel_mappings"`
	Defaults        DefaultsConfig   `yaml:"defaults" json:"defaults"`
}

// ProfileConfig carries the four velocity profile parameters. Fields are
// pointers so an omitted parameter can be told apart from an explicit zero;
// omitted parameters fall back to 0.5.
type ProfileConfig struct {
	DefaultLinear   *float64 `yaml:"default_linear,omitempty" json:"default_linear,omitempty"`
	DefaultAngular  *float64 `yaml:"default_angular,omitempty" json:"default_angular,omitempty"`
	ObstacleLinear  *float64 `yaml:"obstacle_linear,omitempty" json:"obstacle_linear,omitempty"`
	ObstacleAngular *float64 `yaml:"obstacle_angular,omitempty" json:"obstacle_angular,omitempty"`
}

// profileDefault mirrors avoidance.DefaultVelocity; config stays free of a
// dependency on the avoidance package.
const profileDefault = 0.5

// Resolve returns the four profile values with defaults applied for any
// parameter the file omitted.
func (p ProfileConfig) Resolve() (defLin, defAng, obsLin, obsAng float64) {
	resolve := func(v *float64) float64 {
		if v == nil {
			return profileDefault
		}
		return *v
	}
	return resolve(p.DefaultLinear), resolve(p.DefaultAngular),
		resolve(p.ObstacleLinear), resolve(p.ObstacleAngular)
}

// AvoidanceConfig selects the avoidance behavior.
type AvoidanceConfig struct {
	// Range is the proximity threshold below which a reading counts as
	// tripped, in the same units the IR sensors report.
	Range float64 `yaml:"range" json:"range"`
	// Variant is "move" (keep driving while turning) or "stop" (halt
	// forward motion while turning).
	Variant string `yaml:"variant" json:"variant"`
}

// ChannelMapping binds a wire channel name to a snapshot slot.
type ChannelMapping struct {
	Channel  string `yaml:"channel" json:"channel"`
	Kind     string `yaml:"kind" json:"kind"`
	Target   string `yaml:"target,omitempty" json:"target,omitempty"`
	Priority string `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// DefaultsConfig holds fallback values for channel mappings.
type DefaultsConfig struct {
	Priority string `yaml:"priority" json:"priority"`
}

// LoadConfig loads the operational configuration from the given file path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the cross-field constraints a YAML unmarshal cannot.
func (c *Config) Validate() error {
	switch c.Avoidance.Variant {
	case "", VariantMoveTurn, VariantStopTurn:
	default:
		return fmt.Errorf("invalid avoidance variant %q (want %q or %q)",
			c.Avoidance.Variant, VariantMoveTurn, VariantStopTurn)
	}
	for _, m := range c.ChannelMappings {
		switch m.Kind {
		case KindProximity, KindEncoder:
			if m.Target == "" {
				return fmt.Errorf("channel mapping %q: kind %q requires a target", m.Channel, m.Kind)
			}
		case KindOdometry, KindMagnetometer, KindGyroscope, KindAccelerometer:
		default:
			return fmt.Errorf("channel mapping %q: unknown kind %q", m.Channel, m.Kind)
		}
	}
	return nil
}

// GetChannelMapping returns the mapping for a wire channel name, with
// defaults applied.
func (c *Config) GetChannelMapping(channel string) (ChannelMapping, bool) {
	for _, mapping := range c.ChannelMappings {
		if mapping.Channel == channel {
			return applyDefaults(mapping, c.Defaults), true
		}
	}
	return ChannelMapping{}, false
}

// GetChannelMappingsByKind returns all mappings of one kind, with defaults
// applied.
func (c *Config) GetChannelMappingsByKind(kind string) []ChannelMapping {
	var result []ChannelMapping
	for _, mapping := range c.ChannelMappings {
		if mapping.Kind == kind {
			result = append(result, applyDefaults(mapping, c.Defaults))
		}
	}
	return result
}

// applyDefaults merges default values into a channel mapping where fields
// are empty.
func applyDefaults(mapping ChannelMapping, defaults DefaultsConfig) ChannelMapping {
	result := mapping
	if result.Priority == "" {
		result.Priority = defaults.Priority
	}
	return result
}
