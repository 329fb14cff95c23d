package avoidance

import "testing"

func TestNewProfileDefaults(t *testing.T) {
	p := NewProfile()

	defLin, defAng, obsLin, obsAng := p.Values()
	for name, v := range map[string]float64{
		"default linear":   defLin,
		"default angular":  defAng,
		"obstacle linear":  obsLin,
		"obstacle angular": obsAng,
	} {
		if v != DefaultVelocity {
			t.Errorf("Expected %s to default to %v, got %v", name, DefaultVelocity, v)
		}
	}
}

func TestProfileSetters(t *testing.T) {
	p := NewProfile()

	p.SetDefaultLinear(0.2)
	p.SetDefaultAngular(0.25)
	p.SetObstacleLinear(0.3)
	p.SetObstacleAngular(0.4)

	if p.DefaultLinear() != 0.2 {
		t.Errorf("Expected default linear 0.2, got %v", p.DefaultLinear())
	}
	if p.DefaultAngular() != 0.25 {
		t.Errorf("Expected default angular 0.25, got %v", p.DefaultAngular())
	}
	if p.ObstacleLinear() != 0.3 {
		t.Errorf("Expected obstacle linear 0.3, got %v", p.ObstacleLinear())
	}
	if p.ObstacleAngular() != 0.4 {
		t.Errorf("Expected obstacle angular 0.4, got %v", p.ObstacleAngular())
	}
}

func TestProfileClampsNegatives(t *testing.T) {
	p := NewProfile()

	p.SetDefaultLinear(-1)
	p.SetDefaultAngular(-0.5)
	p.SetObstacleLinear(-0.01)
	p.SetObstacleAngular(-100)

	defLin, defAng, obsLin, obsAng := p.Values()
	if defLin != 0 || defAng != 0 || obsLin != 0 || obsAng != 0 {
		t.Errorf("Expected negative values clamped to zero, got %v %v %v %v",
			defLin, defAng, obsLin, obsAng)
	}

	// Zero itself is allowed.
	p.SetObstacleLinear(0)
	if p.ObstacleLinear() != 0 {
		t.Errorf("Expected zero to be accepted, got %v", p.ObstacleLinear())
	}
}
