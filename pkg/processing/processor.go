package processing

import (
	"fmt"

	"github.com/pheeno-robot/controller/pkg/config"
	telemetry "github.com/pheeno-robot/controller/pkg/flatbuffers/pheeno/telemetry"
	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

// Value counts expected per frame kind.
const (
	scalarValueCount   = 1
	vec3ValueCount     = 3
	odometryValueCount = 13 // position(3) + orientation(4) + twist linear(3) + twist angular(3)
)

// TelemetryProcessor decodes sensor frames and writes them into the
// snapshot. Each frame updates exactly one snapshot field; the write is the
// single atomic assignment the engine relies on.
type TelemetryProcessor struct {
	logger   customlog.Logger
	registry *ChannelRegistry
	snapshot *sensors.Snapshot
}

// NewTelemetryProcessor creates a processor writing into the given
// snapshot.
func NewTelemetryProcessor(logger customlog.Logger, registry *ChannelRegistry, snapshot *sensors.Snapshot) *TelemetryProcessor {
	return &TelemetryProcessor{
		logger:   logger,
		registry: registry,
		snapshot: snapshot,
	}
}

// ProcessFrame routes one decoded frame into the snapshot and returns a
// JSON-ready summary of what was written.
func (p *TelemetryProcessor) ProcessFrame(reading *telemetry.SensorReading) (map[string]interface{}, error) {
	channel := string(reading.Channel())

	info, exists := p.registry.GetChannelInfo(channel)
	if !exists {
		return nil, fmt.Errorf("no mapping for channel '%s'", channel)
	}

	n := reading.ValuesLength()
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = reading.Values(i)
	}

	p.logger.Debugf("Processing %s frame for channel '%s' (%d values)", info.Kind, channel, n)

	result := map[string]interface{}{
		"channel":   channel,
		"kind":      info.Kind,
		"timestamp": reading.TimestampNs(),
	}

	switch info.Kind {
	case config.KindProximity:
		if n != scalarValueCount {
			return nil, fmt.Errorf("channel '%s': proximity frame has %d values, want %d", channel, n, scalarValueCount)
		}
		p.snapshot.SetProximity(info.Proximity, values[0])
		result["value"] = values[0]

	case config.KindEncoder:
		if n != scalarValueCount {
			return nil, fmt.Errorf("channel '%s': encoder frame has %d values, want %d", channel, n, scalarValueCount)
		}
		p.snapshot.SetEncoder(info.Encoder, int64(values[0]))
		result["value"] = int64(values[0])

	case config.KindOdometry:
		if n != odometryValueCount {
			return nil, fmt.Errorf("channel '%s': odometry frame has %d values, want %d", channel, n, odometryValueCount)
		}
		odom := sensors.Odometry{
			Position:     sensors.Vec3{X: values[0], Y: values[1], Z: values[2]},
			Orientation:  sensors.Quaternion{X: values[3], Y: values[4], Z: values[5], W: values[6]},
			TwistLinear:  sensors.Vec3{X: values[7], Y: values[8], Z: values[9]},
			TwistAngular: sensors.Vec3{X: values[10], Y: values[11], Z: values[12]},
		}
		p.snapshot.SetOdometry(odom)
		result["odometry"] = odom

	case config.KindMagnetometer, config.KindGyroscope, config.KindAccelerometer:
		if n != vec3ValueCount {
			return nil, fmt.Errorf("channel '%s': %s frame has %d values, want %d", channel, info.Kind, n, vec3ValueCount)
		}
		v := sensors.Vec3{X: values[0], Y: values[1], Z: values[2]}
		switch info.Kind {
		case config.KindMagnetometer:
			p.snapshot.SetMagnetometer(v)
		case config.KindGyroscope:
			p.snapshot.SetGyroscope(v)
		case config.KindAccelerometer:
			p.snapshot.SetAccelerometer(v)
		}
		result["value"] = v

	default:
		return nil, fmt.Errorf("channel '%s': unhandled kind '%s'", channel, info.Kind)
	}

	return result, nil
}

// CreateProcessorFunc creates a FrameProcessor that can be used with the
// FrameDirector.
func (p *TelemetryProcessor) CreateProcessorFunc() FrameProcessor {
	return func(reading *telemetry.SensorReading) (map[string]interface{}, error) {
		return p.ProcessFrame(reading)
	}
}
