package zeromq

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

func testLogger(t *testing.T) customlog.Logger {
	t.Helper()
	logger, err := customlog.NewLogrusLogger("error", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

// inproc endpoints keep the tests off real ports; the name is unique per
// test so parallel packages never collide.
func testBootstrapConfig(name string) *config.BootstrapConfig {
	return &config.BootstrapConfig{
		ZeroMQ: config.ZeroMQBootstrap{
			RequestBindAddress:   fmt.Sprintf("inproc://%s-req", name),
			PublishBindAddress:   fmt.Sprintf("inproc://%s-pub", name),
			TelemetryBindAddress: fmt.Sprintf("inproc://%s-telemetry", name),
		},
	}
}

func TestServicePublishAfterStop(t *testing.T) {
	service, err := NewZeroMQService(testBootstrapConfig("pub-after-stop"), nil, testLogger(t))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	if err := service.Start(); err != nil {
		t.Fatalf("Failed to start service: %v", err)
	}
	service.Stop()

	if err := service.PublishMessage("telemetry.test", []byte("{}")); !errors.Is(err, ErrServiceClosed) {
		t.Errorf("Expected ErrServiceClosed after stop, got %v", err)
	}
}

func TestServiceStopDuringConcurrentPublish(t *testing.T) {
	// Publishers keep sending while the service shuts down: every publish
	// must either succeed or fail with an error, never race the teardown.
	service, err := NewZeroMQService(testBootstrapConfig("stop-during-publish"), nil, testLogger(t))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	if err := service.Start(); err != nil {
		t.Fatalf("Failed to start service: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				service.PublishMessage("telemetry.test", []byte("{}"))
			}
		}()
	}

	service.Stop()
	wg.Wait()

	// Stop is idempotent.
	service.Stop()
}

func TestTelemetryListenerStopDuringReceive(t *testing.T) {
	service, err := NewZeroMQService(testBootstrapConfig("listener-stop"), nil, testLogger(t))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	listener, err := NewTelemetryListener(service.Context(), NewDirectorWrapper(nil), testLogger(t))
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	if err := listener.Start("inproc://listener-stop-telemetry"); err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}

	// Stop while the receive loop is blocked on its timeout.
	listener.Stop()
	service.Stop()
}
