package avoidance

import "sync"

// DefaultVelocity is used for every profile parameter the configuration
// does not supply.
const DefaultVelocity = 0.5

// Profile holds the four tunable speed parameters: cruising (default) and
// obstacle-avoidance values for linear and angular velocity. Each parameter
// is independently settable at runtime; the API exposes them for live
// tuning while the control loop reads them every tick.
//
// Setters clamp negative values to zero. The parameters are magnitudes; the
// engine applies the sign when it chooses a turn direction.
type Profile struct {
	mu sync.RWMutex

	defaultLinear   float64
	defaultAngular  float64
	obstacleLinear  float64
	obstacleAngular float64
}

// NewProfile returns a profile with all four parameters at DefaultVelocity.
func NewProfile() *Profile {
	return &Profile{
		defaultLinear:   DefaultVelocity,
		defaultAngular:  DefaultVelocity,
		obstacleLinear:  DefaultVelocity,
		obstacleAngular: DefaultVelocity,
	}
}

// DefaultLinear returns the cruising linear velocity.
func (p *Profile) DefaultLinear() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.defaultLinear
}

// SetDefaultLinear sets the cruising linear velocity.
func (p *Profile) SetDefaultLinear(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultLinear = clampNonNegative(v)
}

// DefaultAngular returns the cruising angular velocity.
func (p *Profile) DefaultAngular() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.defaultAngular
}

// SetDefaultAngular sets the cruising angular velocity.
func (p *Profile) SetDefaultAngular(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultAngular = clampNonNegative(v)
}

// ObstacleLinear returns the linear velocity used while avoiding.
func (p *Profile) ObstacleLinear() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.obstacleLinear
}

// SetObstacleLinear sets the linear velocity used while avoiding.
func (p *Profile) SetObstacleLinear(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.obstacleLinear = clampNonNegative(v)
}

// ObstacleAngular returns the angular magnitude used while avoiding.
func (p *Profile) ObstacleAngular() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.obstacleAngular
}

// SetObstacleAngular sets the angular magnitude used while avoiding.
func (p *Profile) SetObstacleAngular(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.obstacleAngular = clampNonNegative(v)
}

// Values returns all four parameters at once for API responses. Reads are
// taken under one lock, so the four values are mutually consistent.
func (p *Profile) Values() (defLin, defAng, obsLin, obsAng float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.defaultLinear, p.defaultAngular, p.obstacleLinear, p.obstacleAngular
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
