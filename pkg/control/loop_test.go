package control

import (
	"sync"
	"testing"
	"time"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

// recordingSink collects every published command.
type recordingSink struct {
	mu       sync.Mutex
	commands []avoidance.Command
}

func (s *recordingSink) PublishCommand(cmd avoidance.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	return nil
}

func (s *recordingSink) last() (avoidance.Command, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.commands) == 0 {
		return avoidance.Command{}, 0
	}
	return s.commands[len(s.commands)-1], len(s.commands)
}

func newTestLoop(t *testing.T, variant string) (*Loop, *recordingSink, *sensors.Snapshot) {
	t.Helper()
	logger, err := customlog.NewLogrusLogger("error", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	snapshot := sensors.NewSnapshot()
	for i := 0; i < sensors.NumProximityChannels; i++ {
		snapshot.SetProximity(sensors.ProximityChannel(i), 100)
	}

	profile := avoidance.NewProfile()
	profile.SetObstacleLinear(0.3)
	profile.SetObstacleAngular(0.4)

	engine := avoidance.NewEngine(snapshot, profile, avoidance.NewRandomTurn(1), logger)
	sink := &recordingSink{}
	loop := NewLoop(engine, profile, sink,
		config.AvoidanceConfig{Variant: variant, Range: 10},
		time.Millisecond, logger)
	return loop, sink, snapshot
}

// runFor runs the loop for the given duration and stops it.
func runFor(loop *Loop, d time.Duration) {
	done := make(chan struct{})
	go func() {
		loop.Run()
		close(done)
	}()
	time.Sleep(d)
	loop.Stop()
	<-done
}

func TestLoopPublishesCruiseCommand(t *testing.T) {
	loop, sink, _ := newTestLoop(t, config.VariantMoveTurn)

	runFor(loop, 50*time.Millisecond)

	cmd, n := sink.last()
	if n == 0 {
		t.Fatalf("Expected at least one published command")
	}
	if cmd.Linear != avoidance.DefaultVelocity || cmd.Angular != 0 {
		t.Errorf("Expected cruise command {0.5 0}, got %+v", cmd)
	}

	stats := loop.Stats()
	if stats.TickCount == 0 {
		t.Errorf("Expected nonzero tick count")
	}
	if stats.TriggeredTicks != 0 {
		t.Errorf("Expected no triggered ticks with clear sensors, got %d", stats.TriggeredTicks)
	}
}

func TestLoopAppliesAvoidance(t *testing.T) {
	loop, sink, snapshot := newTestLoop(t, config.VariantMoveTurn)
	snapshot.SetProximity(sensors.IRRight, 5)

	runFor(loop, 50*time.Millisecond)

	cmd, n := sink.last()
	if n == 0 {
		t.Fatalf("Expected at least one published command")
	}
	if cmd.Linear != 0.3 || cmd.Angular != -0.4 {
		t.Errorf("Expected avoidance command {0.3 -0.4}, got %+v", cmd)
	}
	if loop.Stats().TriggeredTicks == 0 {
		t.Errorf("Expected triggered ticks to be counted")
	}
}

func TestLoopStopVariantHalts(t *testing.T) {
	loop, sink, snapshot := newTestLoop(t, config.VariantStopTurn)
	snapshot.SetProximity(sensors.IRCenter, 5)

	runFor(loop, 50*time.Millisecond)

	cmd, n := sink.last()
	if n == 0 {
		t.Fatalf("Expected at least one published command")
	}
	if cmd.Linear != 0 {
		t.Errorf("Stop variant must zero linear velocity, got %+v", cmd)
	}
}

func TestLoopManualBaseCommand(t *testing.T) {
	loop, sink, _ := newTestLoop(t, config.VariantMoveTurn)
	loop.SetBaseCommand(avoidance.Command{Linear: 0.1, Angular: 0.2})

	runFor(loop, 50*time.Millisecond)

	cmd, n := sink.last()
	if n == 0 {
		t.Fatalf("Expected at least one published command")
	}
	// Sensors clear: the manual command passes through untouched.
	if cmd.Linear != 0.1 || cmd.Angular != 0.2 {
		t.Errorf("Expected manual command {0.1 0.2}, got %+v", cmd)
	}

	loop.ClearBaseCommand()
	if _, manual := loop.BaseCommand(); manual {
		t.Errorf("Expected manual flag cleared")
	}
}

func TestLoopAvoidanceDisabled(t *testing.T) {
	loop, sink, snapshot := newTestLoop(t, config.VariantMoveTurn)
	snapshot.SetProximity(sensors.IRCenter, 5)
	loop.SetAvoidanceEnabled(false)
	loop.SetBaseCommand(avoidance.Command{Linear: 0.1})

	runFor(loop, 50*time.Millisecond)

	cmd, n := sink.last()
	if n == 0 {
		t.Fatalf("Expected at least one published command")
	}
	if cmd.Linear != 0.1 || cmd.Angular != 0 {
		t.Errorf("Expected raw manual command with avoidance off, got %+v", cmd)
	}
	if loop.Stats().TriggeredTicks != 0 {
		t.Errorf("Disabled avoidance must not count triggered ticks")
	}
}

func TestLoopRetune(t *testing.T) {
	loop, _, _ := newTestLoop(t, config.VariantMoveTurn)

	loop.SetAvoidance(config.AvoidanceConfig{Variant: config.VariantStopTurn, Range: 25})

	got := loop.Avoidance()
	if got.Variant != config.VariantStopTurn || got.Range != 25 {
		t.Errorf("Unexpected avoidance settings after retune: %+v", got)
	}
}
