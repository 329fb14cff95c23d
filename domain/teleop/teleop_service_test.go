package teleop

import (
	"math"
	"testing"

	"github.com/pheeno-robot/controller/pkg/avoidance"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// fakeDriver records base command handoffs.
type fakeDriver struct {
	cmd     avoidance.Command
	set     bool
	cleared bool
}

func (d *fakeDriver) SetBaseCommand(cmd avoidance.Command) {
	d.cmd = cmd
	d.set = true
}

func (d *fakeDriver) ClearBaseCommand() {
	d.cleared = true
}

func newTestService(t *testing.T) (*TeleopService, *fakeDriver) {
	t.Helper()
	logger, err := customlog.NewLogrusLogger("error", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	driver := &fakeDriver{}
	return NewTeleopService(driver, logger), driver
}

func TestValidateCommand(t *testing.T) {
	service, _ := newTestService(t)

	cases := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"zero", Command{}, false},
		{"forward", Command{Linear: 0.5}, false},
		{"reverse at limit", Command{Linear: -MaxLinearVelocity}, false},
		{"spin at limit", Command{Angular: MaxAngularVelocity}, false},
		{"linear too fast", Command{Linear: MaxLinearVelocity + 0.01}, true},
		{"angular too fast", Command{Angular: -MaxAngularVelocity - 0.01}, true},
		{"nan linear", Command{Linear: math.NaN()}, true},
		{"nan angular", Command{Angular: math.NaN()}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateCommand(tc.cmd)
			if tc.wantErr && err == nil {
				t.Errorf("Expected error for %+v", tc.cmd)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error for %+v: %v", tc.cmd, err)
			}
		})
	}
}

func TestSendCommandInstallsBase(t *testing.T) {
	service, driver := newTestService(t)

	service.SendCommand(Command{Linear: 0.2, Angular: -0.3})

	if !driver.set {
		t.Fatalf("Expected base command to be installed")
	}
	if driver.cmd != (avoidance.Command{Linear: 0.2, Angular: -0.3}) {
		t.Errorf("Unexpected installed command: %+v", driver.cmd)
	}
}

func TestSendStopClearsBase(t *testing.T) {
	service, driver := newTestService(t)

	service.SendStop()

	if !driver.cleared {
		t.Errorf("Expected base command to be cleared")
	}
}
