package avoidance

import (
	"math"

	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

// symmetryBand is the largest right/left reading difference that still
// counts as a head-on, symmetric obstacle.
const symmetryBand = 5.0

// Command is a target velocity for the differential-drive base. Negative
// angular turns left, positive turns right.
type Command struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// Decision is the outcome of one avoidance evaluation.
type Decision struct {
	Command   Command `json:"command"`
	Triggered bool    `json:"triggered"`
}

// Engine turns proximity readings into collision-avoidance velocity
// commands. It reads the injected snapshot and profile on every call and
// keeps no state of its own apart from the turn policy, so evaluations are
// deterministic up to the policy's random draws.
type Engine struct {
	snapshot *sensors.Snapshot
	profile  *Profile
	turn     TurnPolicy
	logger   customlog.Logger
}

// NewEngine creates an avoidance engine over the given snapshot and
// profile. The turn policy breaks symmetric ties; pass a seeded RandomTurn
// in production.
func NewEngine(snapshot *sensors.Snapshot, profile *Profile, turn TurnPolicy, logger customlog.Logger) *Engine {
	return &Engine{
		snapshot: snapshot,
		profile:  profile,
		turn:     turn,
		logger:   logger,
	}
}

// EvaluateMoveTurn runs the avoidance tree in its move-while-turning form:
// on any trip the robot keeps driving at the obstacle linear velocity while
// it turns away.
func (e *Engine) EvaluateMoveTurn(cmd Command, avoidRange float64) Decision {
	center := e.snapshot.Proximity(sensors.IRCenter)
	right := e.snapshot.Proximity(sensors.IRRight)
	left := e.snapshot.Proximity(sensors.IRLeft)
	cright := e.snapshot.Proximity(sensors.IRCenterRight)
	cleft := e.snapshot.Proximity(sensors.IRCenterLeft)

	obsLinear := e.profile.ObstacleLinear()
	obsAngular := e.profile.ObstacleAngular()

	out := cmd
	triggered := true

	switch {
	case center < avoidRange:
		// Head-on. With no usable lateral bias the direction is a coin
		// flip, but any bias overrides it: turn toward the larger
		// clearance.
		if math.Abs(right-left) < symmetryBand || (right >= avoidRange && left >= avoidRange) {
			out.Linear = obsLinear
			out.Angular = e.turn.Resolve(obsAngular)
		}
		if right < left {
			out.Angular = -obsAngular // turn left
		} else {
			out.Angular = obsAngular // turn right
		}
	case cright < avoidRange && cleft < avoidRange:
		out.Angular = e.turn.Resolve(obsAngular)
	case cright < avoidRange:
		out.Angular = -obsAngular // turn left
	case cleft < avoidRange:
		out.Angular = obsAngular // turn right
	case right < avoidRange:
		out.Angular = -obsAngular // turn left
	case left < avoidRange:
		out.Angular = obsAngular // turn right
	default:
		triggered = false
	}

	if triggered {
		out.Linear = obsLinear
		if e.logger != nil {
			e.logger.Debugf("Obstacle detected (move-turn): linear=%.3f angular=%.3f", out.Linear, out.Angular)
		}
	}

	return Decision{Command: out, Triggered: triggered}
}

// EvaluateStopTurn runs the avoidance tree in its stop-while-turning form:
// on any trip forward motion halts and the robot turns in place. The tree
// is the same as the move variant except the head-on branch has no random
// sub-branch; the clearance comparison alone picks the direction.
func (e *Engine) EvaluateStopTurn(cmd Command, avoidRange float64) Decision {
	center := e.snapshot.Proximity(sensors.IRCenter)
	right := e.snapshot.Proximity(sensors.IRRight)
	left := e.snapshot.Proximity(sensors.IRLeft)
	cright := e.snapshot.Proximity(sensors.IRCenterRight)
	cleft := e.snapshot.Proximity(sensors.IRCenterLeft)

	obsAngular := e.profile.ObstacleAngular()

	out := cmd
	triggered := true

	switch {
	case center < avoidRange:
		if right < left {
			out.Angular = -obsAngular // turn left
		} else {
			out.Angular = obsAngular // turn right
		}
	case cright < avoidRange && cleft < avoidRange:
		out.Angular = e.turn.Resolve(obsAngular)
	case cright < avoidRange:
		out.Angular = -obsAngular // turn left
	case cleft < avoidRange:
		out.Angular = obsAngular // turn right
	case right < avoidRange:
		out.Angular = -obsAngular // turn left
	case left < avoidRange:
		out.Angular = obsAngular // turn right
	default:
		triggered = false
	}

	if triggered {
		out.Linear = 0
		if e.logger != nil {
			e.logger.Debugf("Obstacle detected (stop-turn): angular=%.3f", out.Angular)
		}
	}

	return Decision{Command: out, Triggered: triggered}
}
