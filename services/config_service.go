package services

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// ConfigPublisher defines the interface for publishing configuration
// update notifications. This avoids a direct dependency on the concrete
// ZeroMQ publisher.
type ConfigPublisher interface {
	PublishConfigUpdatedNotification() error
}

// AvoidanceRetuner receives avoidance parameter changes when a new
// configuration is applied. *control.Loop satisfies it.
type AvoidanceRetuner interface {
	SetAvoidance(cfg config.AvoidanceConfig)
}

// RobotConfigService manages the operational robot configuration: loading,
// persisting, and applying updates to the live velocity profile and
// avoidance parameters.
type RobotConfigService interface {
	LoadConfig() error
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	UpdateConfig(newConfigYAML []byte) error
	PersistConfig(yamlData []byte) error
	SetPublisher(p ConfigPublisher)
	SetRetuner(r AvoidanceRetuner)
}

type robotConfigService struct {
	configPath      string
	logger          customlog.Logger
	profile         *avoidance.Profile
	configPublisher ConfigPublisher
	retuner         AvoidanceRetuner
	currentConfig   *config.Config
	mu              sync.RWMutex
}

// NewRobotConfigService creates a new RobotConfigService bound to the given
// config file. Publisher and retuner can be injected later.
func NewRobotConfigService(configPath string, profile *avoidance.Profile, logger customlog.Logger) (RobotConfigService, error) {
	if configPath == "" {
		return nil, fmt.Errorf("robot configuration path cannot be empty")
	}

	service := &robotConfigService{
		configPath: configPath,
		logger:     logger,
		profile:    profile,
	}

	if err := service.LoadConfig(); err != nil {
		// Allow creation even if the initial load fails; the file may be
		// provided later via the API.
		logger.Warnf("Initial load of robot config '%s' failed: %v. Service created, but config is nil.", configPath, err)
		return service, nil
	}

	logger.Infof("RobotConfigService initialized for path: %s", configPath)
	return service, nil
}

// LoadConfig reads the robot config file from disk, updates currentConfig,
// and applies the velocity profile.
func (s *robotConfigService) LoadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Loading robot configuration from: %s", s.configPath)
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.currentConfig = nil
		return err
	}

	s.currentConfig = cfg
	s.applyUnlocked(cfg)
	s.logger.Infof("Loaded robot configuration ID: %s, Version: %s", cfg.ConfigID, cfg.Version)
	return nil
}

// GetCurrentConfig returns the currently loaded robot configuration.
// Treat it as read-only; modifications go through UpdateConfig.
func (s *robotConfigService) GetCurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML returns the raw YAML content of the config file, for
// the UI to display before editing.
func (s *robotConfigService) GetCurrentConfigYAML() ([]byte, error) {
	s.mu.RLock()
	path := s.configPath
	s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Errorf("Error reading robot config file '%s' for YAML export: %v", path, err)
		return nil, fmt.Errorf("error reading robot config file '%s': %w", path, err)
	}
	return data, nil
}

// UpdateConfig validates, persists, and applies a new robot configuration,
// then publishes a notification.
func (s *robotConfigService) UpdateConfig(newConfigYAML []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newCfg config.Config
	if err := yaml.Unmarshal(newConfigYAML, &newCfg); err != nil {
		return fmt.Errorf("invalid YAML format: %w", err)
	}
	if newCfg.ConfigID == "" || newCfg.Version == "" || newCfg.RobotID == "" {
		return fmt.Errorf("validation failed: missing required fields (ConfigID, Version, RobotID)")
	}
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Persist before applying so a write failure leaves the active config
	// untouched.
	if err := s.persistConfigUnlocked(newConfigYAML); err != nil {
		return err
	}

	oldID := "N/A"
	if s.currentConfig != nil {
		oldID = s.currentConfig.ConfigID
	}
	s.currentConfig = &newCfg
	s.applyUnlocked(&newCfg)
	s.logger.Infof("Updated robot configuration. ID %s -> %s, Version: %s", oldID, newCfg.ConfigID, newCfg.Version)

	if s.configPublisher != nil {
		// Notify in a goroutine so a slow transport does not block the update.
		go func(publisher ConfigPublisher) {
			if err := publisher.PublishConfigUpdatedNotification(); err != nil {
				s.logger.Warnf("Failed to publish config update notification: %v", err)
			}
		}(s.configPublisher)
	}

	return nil
}

// applyUnlocked pushes the configuration's velocity profile and avoidance
// parameters into the live components. Caller holds the lock.
func (s *robotConfigService) applyUnlocked(cfg *config.Config) {
	if s.profile != nil {
		defLin, defAng, obsLin, obsAng := cfg.VelocityProfile.Resolve()
		s.profile.SetDefaultLinear(defLin)
		s.profile.SetDefaultAngular(defAng)
		s.profile.SetObstacleLinear(obsLin)
		s.profile.SetObstacleAngular(obsAng)
	}
	if s.retuner != nil {
		s.retuner.SetAvoidance(cfg.Avoidance)
	}
}

// PersistConfig writes the given YAML data to the robot config file path.
func (s *robotConfigService) PersistConfig(yamlData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistConfigUnlocked(yamlData)
}

func (s *robotConfigService) persistConfigUnlocked(yamlData []byte) error {
	if err := os.WriteFile(s.configPath, yamlData, 0644); err != nil {
		s.logger.Errorf("Error writing robot config file '%s': %v", s.configPath, err)
		return fmt.Errorf("error writing robot config file '%s': %w", s.configPath, err)
	}
	s.logger.Infof("Persisted configuration to %s", s.configPath)
	return nil
}

// SetPublisher injects the ConfigPublisher after initialization.
func (s *robotConfigService) SetPublisher(p ConfigPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configPublisher = p
}

// SetRetuner injects the AvoidanceRetuner after initialization.
func (s *robotConfigService) SetRetuner(r AvoidanceRetuner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retuner = r
}
