package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

// SensorHandler serves the live sensor snapshot.
type SensorHandler struct {
	snapshot *sensors.Snapshot
	logger   customlog.Logger
}

// NewSensorHandler creates a new handler for sensor endpoints.
func NewSensorHandler(snapshot *sensors.Snapshot, logger customlog.Logger) *SensorHandler {
	return &SensorHandler{
		snapshot: snapshot,
		logger:   logger,
	}
}

// RegisterSensorRoutes registers the sensor API endpoints with the Fiber app.
func RegisterSensorRoutes(app *fiber.App, snapshot *sensors.Snapshot, logger customlog.Logger) {
	h := NewSensorHandler(snapshot, logger)

	apiGroup := app.Group("/api/v1/sensors")
	apiGroup.Get("/", h.handleGetSensors)
	apiGroup.Get("/proximity", h.handleGetProximity)

	logger.Infof("Registered sensor API endpoints under /api/v1/sensors")
}

// handleGetSensors returns the full sensor snapshot.
func (h *SensorHandler) handleGetSensors(c *fiber.Ctx) error {
	proximity := make(map[string]float64, sensors.NumProximityChannels)
	for i := 0; i < sensors.NumProximityChannels; i++ {
		ch := sensors.ProximityChannel(i)
		proximity[ch.String()] = h.snapshot.Proximity(ch)
	}

	encoders := make(map[string]int64, sensors.NumEncoderChannels)
	for i := 0; i < sensors.NumEncoderChannels; i++ {
		ch := sensors.EncoderChannel(i)
		encoders[ch.String()] = h.snapshot.Encoder(ch)
	}

	return c.JSON(fiber.Map{
		"proximity":     proximity,
		"encoders":      encoders,
		"odometry":      h.snapshot.Odometry(),
		"magnetometer":  h.snapshot.Magnetometer(),
		"gyroscope":     h.snapshot.Gyroscope(),
		"accelerometer": h.snapshot.Accelerometer(),
	})
}

// handleGetProximity returns only the six IR proximity channels.
func (h *SensorHandler) handleGetProximity(c *fiber.Ctx) error {
	proximity := make(map[string]float64, sensors.NumProximityChannels)
	for i := 0; i < sensors.NumProximityChannels; i++ {
		ch := sensors.ProximityChannel(i)
		proximity[ch.String()] = h.snapshot.Proximity(ch)
	}
	return c.JSON(proximity)
}

// ProfileHandler serves and updates the live velocity profile.
type ProfileHandler struct {
	profile *avoidance.Profile
	logger  customlog.Logger
}

// NewProfileHandler creates a new handler for profile endpoints.
func NewProfileHandler(profile *avoidance.Profile, logger customlog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profile: profile,
		logger:  logger,
	}
}

// RegisterProfileRoutes registers the velocity profile API endpoints with
// the Fiber app.
func RegisterProfileRoutes(app *fiber.App, profile *avoidance.Profile, logger customlog.Logger) {
	h := NewProfileHandler(profile, logger)

	apiGroup := app.Group("/api/v1/profile")
	apiGroup.Get("/", h.handleGetProfile)
	apiGroup.Put("/", h.handleUpdateProfile)

	logger.Infof("Registered velocity profile API endpoints under /api/v1/profile")
}

func (h *ProfileHandler) currentProfile() ProfileMsg {
	defLin, defAng, obsLin, obsAng := h.profile.Values()
	return ProfileMsg{
		LinearVelocity:          defLin,
		AngularVelocity:         defAng,
		ObstacleLinearVelocity:  obsLin,
		ObstacleAngularVelocity: obsAng,
	}
}

// handleGetProfile returns the current velocity profile.
func (h *ProfileHandler) handleGetProfile(c *fiber.Ctx) error {
	return c.JSON(h.currentProfile())
}

// handleUpdateProfile applies a partial profile update. Negative values are
// clamped to zero by the profile setters; the response carries the effective
// values.
func (h *ProfileHandler) handleUpdateProfile(c *fiber.Ctx) error {
	var update ProfileUpdateMsg
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if v := update.LinearVelocity; v != nil {
		h.profile.SetDefaultLinear(*v)
	}
	if v := update.AngularVelocity; v != nil {
		h.profile.SetDefaultAngular(*v)
	}
	if v := update.ObstacleLinearVelocity; v != nil {
		h.profile.SetObstacleLinear(*v)
	}
	if v := update.ObstacleAngularVelocity; v != nil {
		h.profile.SetObstacleAngular(*v)
	}

	effective := h.currentProfile()
	h.logger.Infof("Velocity profile updated via API: linear=%.3f angular=%.3f obstacle_linear=%.3f obstacle_angular=%.3f",
		effective.LinearVelocity, effective.AngularVelocity,
		effective.ObstacleLinearVelocity, effective.ObstacleAngularVelocity)

	return c.JSON(effective)
}
