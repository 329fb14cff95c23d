package sensors

import "testing"

// clearSnapshot returns a snapshot with every proximity channel well above
// the test limit.
func clearSnapshot() *Snapshot {
	s := NewSnapshot()
	for i := 0; i < NumProximityChannels; i++ {
		s.SetProximity(ProximityChannel(i), 100)
	}
	return s
}

func TestCountTripped(t *testing.T) {
	s := clearSnapshot()
	if got := CountTripped(s, 10); got != 0 {
		t.Errorf("Expected 0 tripped channels, got %d", got)
	}

	s.SetProximity(IRCenter, 5)
	if got := CountTripped(s, 10); got != 1 {
		t.Errorf("Expected 1 tripped channel, got %d", got)
	}

	s.SetProximity(IRBack, 3)
	s.SetProximity(IRLeft, 9.9)
	if got := CountTripped(s, 10); got != 3 {
		t.Errorf("Expected 3 tripped channels, got %d", got)
	}
}

func TestCountTrippedExactLimit(t *testing.T) {
	s := clearSnapshot()
	s.SetProximity(IRRight, 10)
	if got := CountTripped(s, 10); got != 0 {
		t.Errorf("Reading equal to limit must not count, got %d", got)
	}
}

func TestTriggeredNeedsTwoChannels(t *testing.T) {
	s := clearSnapshot()
	if Triggered(s, 10) {
		t.Errorf("Clear snapshot must not be triggered")
	}

	s.SetProximity(IRBack, 5)
	if Triggered(s, 10) {
		t.Errorf("A single tripped channel must not trigger the aggregate")
	}

	s.SetProximity(IRCenter, 5)
	if !Triggered(s, 10) {
		t.Errorf("Two tripped channels must trigger the aggregate")
	}
}
