package zeromq

import (
	"encoding/json"
	"fmt"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// CmdVelTopic is the topic velocity commands are published on.
const CmdVelTopic = "pheeno.cmd_vel"

// CommandPublisher publishes velocity commands to the robot firmware
// bridge.
type CommandPublisher struct {
	service *ZeroMQService
	logger  customlog.Logger
}

// NewCommandPublisher creates a new publisher for velocity commands.
func NewCommandPublisher(service *ZeroMQService, logger customlog.Logger) *CommandPublisher {
	return &CommandPublisher{
		service: service,
		logger:  logger,
	}
}

// PublishCommand publishes a velocity command on the cmd_vel topic.
func (p *CommandPublisher) PublishCommand(cmd avoidance.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	p.logger.Debugf("Publishing command: linear=%.3f angular=%.3f", cmd.Linear, cmd.Angular)
	return p.service.PublishMessage(CmdVelTopic, data)
}

// ConfigPublisher publishes configuration updates to subscribed gateways.
type ConfigPublisher struct {
	service *ZeroMQService
	config  *config.Config
	logger  customlog.Logger
}

// NewConfigPublisher creates a new publisher for configuration updates.
func NewConfigPublisher(service *ZeroMQService, cfg *config.Config, logger customlog.Logger) *ConfigPublisher {
	return &ConfigPublisher{
		service: service,
		config:  cfg,
		logger:  logger,
	}
}

// PublishConfigUpdate publishes the current configuration to all subscribed
// gateways.
func (p *ConfigPublisher) PublishConfigUpdate() error {
	p.logger.Infof("Publishing configuration update (ID: %s)", p.config.ConfigID)
	return p.service.PublishJSON("configuration.update", MsgTypeConfigResponse, p.config)
}

// PublishConfigUpdatedNotification publishes a notification that the config
// has been updated.
func (p *ConfigPublisher) PublishConfigUpdatedNotification() error {
	notification := map[string]interface{}{
		"config_id":    p.config.ConfigID,
		"version":      p.config.Version,
		"last_updated": p.config.LastUpdated,
	}

	return p.service.PublishJSON("configuration.notification", "CONFIG_UPDATED", notification)
}
