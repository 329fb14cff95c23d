package sensors

import (
	"math"
	"sync/atomic"
)

// Vec3 is a plain 3-axis reading (magnetometer, gyroscope, accelerometer,
// odometry twist components).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation in quaternion form, as reported by odometry.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Odometry is the combined pose and twist estimate delivered by the base in
// a single frame.
type Odometry struct {
	Position     Vec3       `json:"position"`
	Orientation  Quaternion `json:"orientation"`
	TwistLinear  Vec3       `json:"twist_linear"`
	TwistAngular Vec3       `json:"twist_angular"`
}

// Snapshot holds the latest reading of every sensor channel. Each field is
// written independently by the ingestion layer and read by the avoidance
// engine; single-field writes are atomic, so a reader never observes a torn
// value, but there is no consistency guarantee across fields. Channels have
// exactly one producer each.
//
// All readings are zero until the first update arrives. A zero proximity
// reading is below any positive avoidance range, so the engine reports an
// obstacle until real data flows; that startup behavior is intentional.
type Snapshot struct {
	proximity [NumProximityChannels]atomic.Uint64
	encoders  [NumEncoderChannels]atomic.Int64

	posePosition    [3]atomic.Uint64
	poseOrientation [4]atomic.Uint64
	twistLinear     [3]atomic.Uint64
	twistAngular    [3]atomic.Uint64

	magnetometer  [3]atomic.Uint64
	gyroscope     [3]atomic.Uint64
	accelerometer [3]atomic.Uint64
}

// NewSnapshot returns a snapshot with every channel zeroed.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// SetProximity overwrites one proximity channel. Out-of-range channels are a
// programming error and panic.
func (s *Snapshot) SetProximity(ch ProximityChannel, value float64) {
	s.proximity[ch].Store(math.Float64bits(value))
}

// Proximity returns the most recent reading for one proximity channel, or 0
// if the channel was never updated.
func (s *Snapshot) Proximity(ch ProximityChannel) float64 {
	return math.Float64frombits(s.proximity[ch].Load())
}

// ProximityReadings returns all six proximity channels indexed by
// ProximityChannel. The values are read one channel at a time and may mix
// old and new readings across channels.
func (s *Snapshot) ProximityReadings() [NumProximityChannels]float64 {
	var out [NumProximityChannels]float64
	for i := range out {
		out[i] = s.Proximity(ProximityChannel(i))
	}
	return out
}

// SetEncoder overwrites one wheel encoder counter.
func (s *Snapshot) SetEncoder(ch EncoderChannel, ticks int64) {
	s.encoders[ch].Store(ticks)
}

// Encoder returns the most recent tick count for one wheel encoder.
func (s *Snapshot) Encoder(ch EncoderChannel) int64 {
	return s.encoders[ch].Load()
}

// SetOdometry stores a combined odometry frame. Each scalar is stored
// atomically; readers that need the full pose should accept that fields may
// straddle two frames.
func (s *Snapshot) SetOdometry(o Odometry) {
	storeVec3(&s.posePosition, o.Position)
	s.poseOrientation[0].Store(math.Float64bits(o.Orientation.X))
	s.poseOrientation[1].Store(math.Float64bits(o.Orientation.Y))
	s.poseOrientation[2].Store(math.Float64bits(o.Orientation.Z))
	s.poseOrientation[3].Store(math.Float64bits(o.Orientation.W))
	storeVec3(&s.twistLinear, o.TwistLinear)
	storeVec3(&s.twistAngular, o.TwistAngular)
}

// Odometry returns the most recently stored pose and twist.
func (s *Snapshot) Odometry() Odometry {
	return Odometry{
		Position: loadVec3(&s.posePosition),
		Orientation: Quaternion{
			X: math.Float64frombits(s.poseOrientation[0].Load()),
			Y: math.Float64frombits(s.poseOrientation[1].Load()),
			Z: math.Float64frombits(s.poseOrientation[2].Load()),
			W: math.Float64frombits(s.poseOrientation[3].Load()),
		},
		TwistLinear:  loadVec3(&s.twistLinear),
		TwistAngular: loadVec3(&s.twistAngular),
	}
}

// SetMagnetometer overwrites the 3-axis magnetometer reading.
func (s *Snapshot) SetMagnetometer(v Vec3) { storeVec3(&s.magnetometer, v) }

// Magnetometer returns the latest magnetometer reading.
func (s *Snapshot) Magnetometer() Vec3 { return loadVec3(&s.magnetometer) }

// SetGyroscope overwrites the 3-axis gyroscope reading.
func (s *Snapshot) SetGyroscope(v Vec3) { storeVec3(&s.gyroscope, v) }

// Gyroscope returns the latest gyroscope reading.
func (s *Snapshot) Gyroscope() Vec3 { return loadVec3(&s.gyroscope) }

// SetAccelerometer overwrites the 3-axis accelerometer reading.
func (s *Snapshot) SetAccelerometer(v Vec3) { storeVec3(&s.accelerometer, v) }

// Accelerometer returns the latest accelerometer reading.
func (s *Snapshot) Accelerometer() Vec3 { return loadVec3(&s.accelerometer) }

func storeVec3(dst *[3]atomic.Uint64, v Vec3) {
	dst[0].Store(math.Float64bits(v.X))
	dst[1].Store(math.Float64bits(v.Y))
	dst[2].Store(math.Float64bits(v.Z))
}

func loadVec3(src *[3]atomic.Uint64) Vec3 {
	return Vec3{
		X: math.Float64frombits(src[0].Load()),
		Y: math.Float64frombits(src[1].Load()),
		Z: math.Float64frombits(src[2].Load()),
	}
}
