package zeromq

import (
	"errors"

	"github.com/pheeno-robot/controller/pkg/flatbuffers/pheeno/telemetry"
	"github.com/pheeno-robot/controller/pkg/processing"
)

// FrameRouter routes decoded sensor frames into the processing pipeline.
// *processing.FrameDirector satisfies it.
type FrameRouter interface {
	RouteFrame(reading *telemetry.SensorReading) error
}

// DirectorWrapper provides a nil-safe FrameRouter around the frame
// director, so transport code can be wired before the pipeline exists.
type DirectorWrapper struct {
	director *processing.FrameDirector
}

// NewDirectorWrapper creates a wrapper around the frame director.
func NewDirectorWrapper(director *processing.FrameDirector) *DirectorWrapper {
	return &DirectorWrapper{director: director}
}

// RouteFrame forwards the frame to the underlying director.
func (w *DirectorWrapper) RouteFrame(reading *telemetry.SensorReading) error {
	if w.director == nil {
		return errors.New("frame director not initialized")
	}
	return w.director.RouteFrame(reading)
}
