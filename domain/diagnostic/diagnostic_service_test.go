package diagnostic

import (
	"testing"
	"time"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	"github.com/pheeno-robot/controller/pkg/control"
	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

type nopSink struct{}

func (nopSink) PublishCommand(avoidance.Command) error { return nil }

func TestGetStatusReportsObstruction(t *testing.T) {
	logger, err := customlog.NewLogrusLogger("error", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	snapshot := sensors.NewSnapshot()
	for i := 0; i < sensors.NumProximityChannels; i++ {
		snapshot.SetProximity(sensors.ProximityChannel(i), 100)
	}

	profile := avoidance.NewProfile()
	engine := avoidance.NewEngine(snapshot, profile, avoidance.NewRandomTurn(1), logger)
	loop := control.NewLoop(engine, profile, nopSink{},
		config.AvoidanceConfig{Variant: config.VariantMoveTurn, Range: 10},
		time.Millisecond, logger)

	service := NewDiagnosticService("pheeno-test", snapshot, loop, nil, nil)

	status := service.GetStatus()
	if status.RobotID != "pheeno-test" {
		t.Errorf("Expected robot ID pheeno-test, got %s", status.RobotID)
	}
	if status.TrippedChannels != 0 || status.Obstructed {
		t.Errorf("Clear sensors must report no obstruction, got %+v", status)
	}

	snapshot.SetProximity(sensors.IRCenter, 5)
	status = service.GetStatus()
	if status.TrippedChannels != 1 {
		t.Errorf("Expected 1 tripped channel, got %d", status.TrippedChannels)
	}
	if status.Obstructed {
		t.Errorf("One tripped channel must not obstruct the suite")
	}

	snapshot.SetProximity(sensors.IRLeft, 5)
	status = service.GetStatus()
	if !status.Obstructed {
		t.Errorf("Two tripped channels must report obstruction")
	}
}
