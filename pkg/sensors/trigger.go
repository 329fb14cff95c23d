package sensors

// CountTripped counts the proximity channels whose reading is strictly
// below limit. All six channels are inspected, including the back sensor.
func CountTripped(s *Snapshot, limit float64) int {
	count := 0
	for ch := 0; ch < NumProximityChannels; ch++ {
		if s.Proximity(ProximityChannel(ch)) < limit {
			count++
		}
	}
	return count
}

// Triggered reports whether the proximity suite as a whole should be
// treated as tripped. The threshold is two channels rather than one so the
// back sensor, which takes no part in frontal avoidance, cannot trip the
// aggregate on its own.
func Triggered(s *Snapshot, limit float64) bool {
	return CountTripped(s, limit) > 1
}
