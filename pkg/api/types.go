package api

// Vector3 defines a standard 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TwistMsg represents a command velocity message, matching geometry_msgs/Twist.
// Only Linear.X and Angular.Z are meaningful for a differential drive.
type TwistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// ProfileMsg carries the velocity profile over the API.
type ProfileMsg struct {
	LinearVelocity          float64 `json:"linear_velocity"`
	AngularVelocity         float64 `json:"angular_velocity"`
	ObstacleLinearVelocity  float64 `json:"obstacle_linear_velocity"`
	ObstacleAngularVelocity float64 `json:"obstacle_angular_velocity"`
}

// ProfileUpdateMsg is the PUT body for profile updates. Absent fields keep
// their current values.
type ProfileUpdateMsg struct {
	LinearVelocity          *float64 `json:"linear_velocity,omitempty"`
	AngularVelocity         *float64 `json:"angular_velocity,omitempty"`
	ObstacleLinearVelocity  *float64 `json:"obstacle_linear_velocity,omitempty"`
	ObstacleAngularVelocity *float64 `json:"obstacle_angular_velocity,omitempty"`
}
