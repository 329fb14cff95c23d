package zeromq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// ConfigHandler handles CONFIG_REQUEST messages from gateways.
type ConfigHandler struct {
	config *config.Config
	logger customlog.Logger
}

// NewConfigHandler creates a new handler for configuration requests.
func NewConfigHandler(cfg *config.Config, logger customlog.Logger) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
		logger: logger,
	}
}

// HandleMessage processes a CONFIG_REQUEST message and returns a
// CONFIG_RESPONSE with the current robot configuration.
func (h *ConfigHandler) HandleMessage(data []byte) ([]byte, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	if msg.Type != MsgTypeConfigRequest {
		return nil, fmt.Errorf("unexpected message type: %s", msg.Type)
	}

	h.logger.Infof("Processing configuration request")

	response := Message{
		Type:      MsgTypeConfigResponse,
		Timestamp: float64(time.Now().Unix()),
		Data:      h.config,
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}

	h.logger.Debugf("Sending configuration response (%d bytes)", len(responseData))
	return responseData, nil
}

// profileUpdateData holds the optional profile parameters carried by a
// PROFILE_UPDATE message. Absent fields leave the current value untouched.
type profileUpdateData struct {
	LinearVelocity          *float64 `json:"linear_velocity,omitempty"`
	AngularVelocity         *float64 `json:"angular_velocity,omitempty"`
	ObstacleLinearVelocity  *float64 `json:"obstacle_linear_velocity,omitempty"`
	ObstacleAngularVelocity *float64 `json:"obstacle_angular_velocity,omitempty"`
}

// ProfileUpdateHandler handles PROFILE_UPDATE messages that retune the live
// velocity profile.
type ProfileUpdateHandler struct {
	profile *avoidance.Profile
	logger  customlog.Logger
}

// NewProfileUpdateHandler creates a new handler for profile updates.
func NewProfileUpdateHandler(profile *avoidance.Profile, logger customlog.Logger) *ProfileUpdateHandler {
	return &ProfileUpdateHandler{
		profile: profile,
		logger:  logger,
	}
}

// HandleMessage processes a PROFILE_UPDATE message and returns an ACK with
// the effective profile values.
func (h *ProfileUpdateHandler) HandleMessage(data []byte) ([]byte, error) {
	var msg struct {
		Type      string            `json:"type"`
		Timestamp float64           `json:"timestamp"`
		Data      profileUpdateData `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse profile update: %w", err)
	}

	if msg.Type != MsgTypeProfileUpdate {
		return nil, fmt.Errorf("unexpected message type: %s", msg.Type)
	}

	if v := msg.Data.LinearVelocity; v != nil {
		h.profile.SetDefaultLinear(*v)
	}
	if v := msg.Data.AngularVelocity; v != nil {
		h.profile.SetDefaultAngular(*v)
	}
	if v := msg.Data.ObstacleLinearVelocity; v != nil {
		h.profile.SetObstacleLinear(*v)
	}
	if v := msg.Data.ObstacleAngularVelocity; v != nil {
		h.profile.SetObstacleAngular(*v)
	}

	defLin, defAng, obsLin, obsAng := h.profile.Values()
	h.logger.Infof("Velocity profile updated: linear=%.3f angular=%.3f obstacle_linear=%.3f obstacle_angular=%.3f",
		defLin, defAng, obsLin, obsAng)

	ack := Message{
		Type:      MsgTypeAck,
		Timestamp: float64(time.Now().Unix()),
		Data: map[string]interface{}{
			"linear_velocity":           defLin,
			"angular_velocity":          defAng,
			"obstacle_linear_velocity":  obsLin,
			"obstacle_angular_velocity": obsAng,
		},
	}

	responseData, err := json.Marshal(ack)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ACK response: %w", err)
	}
	return responseData, nil
}

// RegisterConfigHandlers registers config-related handlers and returns the
// config publisher.
func RegisterConfigHandlers(service *ZeroMQService, cfg *config.Config, profile *avoidance.Profile, logger customlog.Logger) *ConfigPublisher {
	service.RegisterHandler(MsgTypeConfigRequest, NewConfigHandler(cfg, logger))
	service.RegisterHandler(MsgTypeProfileUpdate, NewProfileUpdateHandler(profile, logger))

	publisher := NewConfigPublisher(service, cfg, logger)

	logger.Infof("Registered configuration handlers and publisher")
	return publisher
}
