package diagnostic

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pheeno-robot/controller/pkg/control"
	"github.com/pheeno-robot/controller/pkg/processing"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

// Status is the health report the diagnostics API serves: control loop
// counters, processing pool metrics, and per-channel ingestion stats.
type Status struct {
	Timestamp    time.Time                         `json:"timestamp"`
	RobotID      string                            `json:"robot_id"`
	UptimeSecs   float64                           `json:"uptime_secs"`
	Loop         control.Stats                     `json:"loop"`
	Pools        map[string]processing.PoolMetrics `json:"pools"`
	ChannelStats map[string]map[string]interface{} `json:"channel_stats"`

	// TrippedChannels counts proximity channels currently under the
	// avoidance range; Obstructed is the suite-level trip (more than one
	// channel under range).
	TrippedChannels int  `json:"tripped_channels"`
	Obstructed      bool `json:"obstructed"`
}

// DiagnosticService aggregates runtime health from the control loop and
// the ingestion pipeline.
type DiagnosticService struct {
	mu       sync.RWMutex
	robotID  string
	started  time.Time
	snapshot *sensors.Snapshot
	loop     *control.Loop
	director *processing.FrameDirector
	registry *processing.ChannelRegistry
}

// NewDiagnosticService creates a new diagnostic service instance.
func NewDiagnosticService(robotID string, snapshot *sensors.Snapshot, loop *control.Loop, director *processing.FrameDirector, registry *processing.ChannelRegistry) *DiagnosticService {
	return &DiagnosticService{
		robotID:  robotID,
		started:  time.Now(),
		snapshot: snapshot,
		loop:     loop,
		director: director,
		registry: registry,
	}
}

// GetStatus returns the current health report.
func (s *DiagnosticService) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Timestamp:  time.Now(),
		RobotID:    s.robotID,
		UptimeSecs: time.Since(s.started).Seconds(),
	}
	if s.loop != nil {
		status.Loop = s.loop.Stats()
		if s.snapshot != nil {
			avoidRange := s.loop.Avoidance().Range
			status.TrippedChannels = sensors.CountTripped(s.snapshot, avoidRange)
			status.Obstructed = sensors.Triggered(s.snapshot, avoidRange)
		}
	}
	if s.director != nil {
		status.Pools = s.director.GetPoolMetrics()
	}
	if s.registry != nil {
		status.ChannelStats = s.registry.GetChannelStats()
	}
	return status
}

// GetStatusHandler handles API requests for the health report.
func (s *DiagnosticService) GetStatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "success",
		"diagnostics": s.GetStatus(),
	})
}
