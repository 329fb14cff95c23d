package zeromq

import (
	"fmt"
	"sync/atomic"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/processing"
)

// TelemetryListener receives SensorReading frames from the robot firmware
// bridge on a SUB socket and feeds them into the frame director.
type TelemetryListener struct {
	socket  *zmq.Socket
	router  FrameRouter
	logger  customlog.Logger
	running atomic.Bool
}

// NewTelemetryListener creates a new ZeroMQ telemetry listener. The socket
// is created on the shared context so teardown follows the service's.
func NewTelemetryListener(ctx *zmq.Context, router FrameRouter, logger customlog.Logger) (*TelemetryListener, error) {
	socket, err := ctx.NewSocket(zmq.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	// Subscribe to all topics: priority filtering happens in the director.
	if err := socket.SetSubscribe(""); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	if err := socket.SetRcvtimeo(500 * time.Millisecond); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set receive timeout: %w", err)
	}

	return &TelemetryListener{
		socket: socket,
		router: router,
		logger: logger,
	}, nil
}

// Start binds the listener and begins receiving frames.
func (l *TelemetryListener) Start(address string) error {
	if err := l.socket.Bind(address); err != nil {
		return fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	l.running.Store(true)
	go l.receiveLoop()

	l.logger.Infof("Telemetry listener started on %s", address)
	return nil
}

// Stop stops the telemetry listener.
func (l *TelemetryListener) Stop() {
	l.running.Store(false)
	l.socket.Close()
}

// receiveLoop continuously receives frames and routes them.
func (l *TelemetryListener) receiveLoop() {
	for l.running.Load() {
		msg, err := l.socket.RecvBytes(0)
		if err != nil {
			// Timeouts are expected; anything else gets a breather.
			if zmq.AsErrno(err) != zmq.Errno(syscall.EAGAIN) {
				if l.running.Load() {
					l.logger.Errorf("Error receiving telemetry frame: %v", err)
				}
				time.Sleep(100 * time.Millisecond)
			}
			continue
		}

		reading := processing.DecodeSensorReading(msg)
		if err := l.router.RouteFrame(reading); err != nil {
			l.logger.Warnf("Failed to route frame for channel '%s': %v",
				string(reading.Channel()), err)
		}
	}
}
