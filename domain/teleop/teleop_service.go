package teleop

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// Velocity limits for manual drive commands. The Pheeno's differential
// drive saturates well below these; anything larger is a client bug.
const (
	MaxLinearVelocity  = 1.0
	MaxAngularVelocity = 2.0
)

// Command represents a manual drive command from a teleop client.
type Command struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
	RobotID string  `json:"robot_id,omitempty"`
}

// Driver receives manual drive commands. *control.Loop satisfies it.
type Driver interface {
	SetBaseCommand(cmd avoidance.Command)
	ClearBaseCommand()
}

// TeleopService handles robot teleoperation commands: it validates and
// clamps manual drive input and hands it to the control loop, which
// applies obstacle avoidance before anything reaches the wheels.
type TeleopService struct {
	driver Driver
	logger customlog.Logger
}

// NewTeleopService creates a new teleop service instance.
func NewTeleopService(driver Driver, logger customlog.Logger) *TeleopService {
	return &TeleopService{
		driver: driver,
		logger: logger,
	}
}

// CommandHandler processes incoming teleop commands over HTTP.
func (s *TeleopService) CommandHandler(c *fiber.Ctx) error {
	var cmd Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := s.ValidateCommand(cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.SendCommand(cmd)

	return c.JSON(fiber.Map{
		"status":  "command received",
		"command": cmd,
	})
}

// StopHandler clears the manual drive command and returns the robot to
// autonomous cruising.
func (s *TeleopService) StopHandler(c *fiber.Ctx) error {
	s.SendStop()

	return c.JSON(fiber.Map{
		"status": "teleop released",
	})
}

// SendStop clears the manual drive command.
func (s *TeleopService) SendStop() {
	s.driver.ClearBaseCommand()
	s.logger.Infof("Teleop released, resuming autonomous drive")
}

// ValidateCommand checks if a command is within safe limits.
func (s *TeleopService) ValidateCommand(cmd Command) error {
	if cmd.Linear != cmd.Linear || cmd.Angular != cmd.Angular { // NaN
		return fmt.Errorf("command contains NaN")
	}
	if cmd.Linear < -MaxLinearVelocity || cmd.Linear > MaxLinearVelocity {
		return fmt.Errorf("linear velocity %.3f exceeds limit %.1f", cmd.Linear, MaxLinearVelocity)
	}
	if cmd.Angular < -MaxAngularVelocity || cmd.Angular > MaxAngularVelocity {
		return fmt.Errorf("angular velocity %.3f exceeds limit %.1f", cmd.Angular, MaxAngularVelocity)
	}
	return nil
}

// SendCommand installs a validated command as the control loop's base
// command.
func (s *TeleopService) SendCommand(cmd Command) {
	s.driver.SetBaseCommand(avoidance.Command{
		Linear:  cmd.Linear,
		Angular: cmd.Angular,
	})
	s.logger.Debugf("Teleop command installed: linear=%.3f angular=%.3f", cmd.Linear, cmd.Angular)
}
