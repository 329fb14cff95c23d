package control

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// CommandSink receives the velocity command produced by each control tick.
// *zeromq.CommandPublisher satisfies it.
type CommandSink interface {
	PublishCommand(cmd avoidance.Command) error
}

// Stats is a snapshot of loop counters for diagnostics.
type Stats struct {
	TickCount      uint64 `json:"tick_count"`
	TriggeredTicks uint64 `json:"triggered_ticks"`
	PublishErrors  uint64 `json:"publish_errors"`
}

// Loop drives the robot at a fixed rate. Each tick it forms a base command
// (manual teleop input if present, otherwise cruise velocity from the
// profile), runs it through the avoidance engine, and publishes the result.
//
// All movement requests flow through here so teleop and avoidance cannot
// fight over the command channel.
type Loop struct {
	engine  *avoidance.Engine
	profile *avoidance.Profile
	sink    CommandSink
	logger  customlog.Logger

	mu          sync.RWMutex
	baseCmd     avoidance.Command
	manual      bool // baseCmd came from teleop, not the profile
	variant     string
	avoidRange  float64
	avoidEnable bool

	rate time.Duration
	stop chan struct{}

	tickCount      atomic.Uint64
	triggeredTicks atomic.Uint64
	publishErrors  atomic.Uint64

	lastErrorTime time.Time
}

// NewLoop creates a control loop running at the given rate. The variant and
// range come from the robot configuration and may be retuned at runtime.
func NewLoop(engine *avoidance.Engine, profile *avoidance.Profile, sink CommandSink, cfg config.AvoidanceConfig, rate time.Duration, logger customlog.Logger) *Loop {
	return &Loop{
		engine:      engine,
		profile:     profile,
		sink:        sink,
		logger:      logger,
		variant:     cfg.Variant,
		avoidRange:  cfg.Range,
		avoidEnable: true,
		rate:        rate,
		stop:        make(chan struct{}),
	}
}

// SetBaseCommand installs a manual drive command from teleop. It replaces
// the profile cruise velocity until ClearBaseCommand is called.
func (l *Loop) SetBaseCommand(cmd avoidance.Command) {
	l.mu.Lock()
	l.baseCmd = cmd
	l.manual = true
	l.mu.Unlock()
}

// ClearBaseCommand reverts to cruising on the profile's default velocity.
func (l *Loop) ClearBaseCommand() {
	l.mu.Lock()
	l.baseCmd = avoidance.Command{}
	l.manual = false
	l.mu.Unlock()
}

// BaseCommand returns the current base command and whether it is manual.
func (l *Loop) BaseCommand() (avoidance.Command, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseCmd, l.manual
}

// SetAvoidanceEnabled toggles obstacle avoidance. When disabled the base
// command is published as-is, for bench teleop with the robot on blocks.
func (l *Loop) SetAvoidanceEnabled(enabled bool) {
	l.mu.Lock()
	l.avoidEnable = enabled
	l.mu.Unlock()
	l.logger.Infof("Obstacle avoidance enabled: %v", enabled)
}

// AvoidanceEnabled reports whether avoidance is applied to the base command.
func (l *Loop) AvoidanceEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.avoidEnable
}

// SetAvoidance retunes the avoidance variant and range, typically after a
// configuration update.
func (l *Loop) SetAvoidance(cfg config.AvoidanceConfig) {
	l.mu.Lock()
	l.variant = cfg.Variant
	l.avoidRange = cfg.Range
	l.mu.Unlock()
	l.logger.Infof("Avoidance retuned: variant=%s range=%.1f", cfg.Variant, cfg.Range)
}

// Avoidance returns the active avoidance variant and range.
func (l *Loop) Avoidance() config.AvoidanceConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return config.AvoidanceConfig{Variant: l.variant, Range: l.avoidRange}
}

// Stats returns a snapshot of loop counters.
func (l *Loop) Stats() Stats {
	return Stats{
		TickCount:      l.tickCount.Load(),
		TriggeredTicks: l.triggeredTicks.Load(),
		PublishErrors:  l.publishErrors.Load(),
	}
}

// Run starts the control loop. Blocks until Stop is called.
func (l *Loop) Run() {
	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()

	l.logger.Infof("Control loop started: rate=%v", l.rate)

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// Stop halts the control loop gracefully.
func (l *Loop) Stop() {
	close(l.stop)
}

// tick executes one control cycle: form the base command, apply avoidance,
// publish.
func (l *Loop) tick() {
	l.mu.RLock()
	base := l.baseCmd
	manual := l.manual
	variant := l.variant
	avoidRange := l.avoidRange
	enabled := l.avoidEnable
	l.mu.RUnlock()

	if !manual {
		base = avoidance.Command{Linear: l.profile.DefaultLinear()}
	}

	l.tickCount.Add(1)

	out := base
	if enabled {
		var decision avoidance.Decision
		if variant == config.VariantStopTurn {
			decision = l.engine.EvaluateStopTurn(base, avoidRange)
		} else {
			decision = l.engine.EvaluateMoveTurn(base, avoidRange)
		}
		if decision.Triggered {
			l.triggeredTicks.Add(1)
		}
		out = decision.Command
	}

	if err := l.sink.PublishCommand(out); err != nil {
		l.publishErrors.Add(1)
		// Log at most once per 5 seconds to keep a dead transport from
		// flooding the log at tick rate.
		if l.lastErrorTime.IsZero() || time.Since(l.lastErrorTime) > 5*time.Second {
			l.logger.Errorf("Failed to publish command: %v (total errors: %d)",
				err, l.publishErrors.Load())
			l.lastErrorTime = time.Now()
		}
	}
}
