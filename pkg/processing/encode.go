package processing

import (
	flatbuffers "github.com/google/flatbuffers/go"

	telemetry "github.com/pheeno-robot/controller/pkg/flatbuffers/pheeno/telemetry"
)

// EncodeSensorReading builds a SensorReading frame for the given channel.
// Producers (the gateway simulator, tests) share this so the framing stays
// in one place.
func EncodeSensorReading(channel string, timestampNs int64, values ...float64) []byte {
	builder := flatbuffers.NewBuilder(256)

	channelOffset := builder.CreateString(channel)

	telemetry.SensorReadingStartValuesVector(builder, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		builder.PrependFloat64(values[i])
	}
	valuesOffset := builder.EndVector(len(values))

	telemetry.SensorReadingStart(builder)
	telemetry.SensorReadingAddChannel(builder, channelOffset)
	telemetry.SensorReadingAddTimestampNs(builder, timestampNs)
	telemetry.SensorReadingAddValues(builder, valuesOffset)
	readingOffset := telemetry.SensorReadingEnd(builder)

	builder.Finish(readingOffset)
	return builder.FinishedBytes()
}

// DecodeSensorReading parses a raw frame back into its root table.
func DecodeSensorReading(buf []byte) *telemetry.SensorReading {
	return telemetry.GetRootAsSensorReading(buf, 0)
}
