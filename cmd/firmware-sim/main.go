package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/processing"
)

// firmware-sim publishes synthetic SensorReading frames the way the Pheeno
// firmware bridge does, for exercising the controller without hardware.
func main() {
	address := flag.String("address", "tcp://localhost:5557", "controller telemetry address to connect to")
	rateMs := flag.Int("rate-ms", 50, "publish period per sensor sweep")
	wall := flag.Float64("wall", 40.0, "distance to the simulated wall ahead, in cm")
	flag.Parse()

	logger, err := customlog.NewLogrusLogger("info", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	socket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		logger.Fatalf("Failed to create PUB socket: %v", err)
	}
	defer socket.Close()

	if err := socket.Connect(*address); err != nil {
		logger.Fatalf("Failed to connect to %s: %v", *address, err)
	}
	logger.Infof("Firmware simulator publishing to %s every %dms", *address, *rateMs)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(*rateMs) * time.Millisecond)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var ticks int64
	start := time.Now()

	irChannels := []string{
		"pheeno.ir.center", "pheeno.ir.right", "pheeno.ir.left",
		"pheeno.ir.cright", "pheeno.ir.cleft", "pheeno.ir.back",
	}
	encoderChannels := []string{
		"pheeno.encoder.ll", "pheeno.encoder.lr",
		"pheeno.encoder.rl", "pheeno.encoder.rr",
	}

	for {
		select {
		case <-quit:
			logger.Infof("Firmware simulator stopping")
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			ticks++

			// The robot drives toward a wall and backs off, so the center
			// reading oscillates through the avoidance range.
			t := time.Since(start).Seconds()
			center := *wall + 30.0*math.Sin(t/2.0)

			for i, ch := range irChannels {
				value := center
				if i > 0 {
					value = *wall + rng.Float64()*40.0
				}
				publish(socket, logger, ch, processing.EncodeSensorReading(ch, now, value))
			}

			for _, ch := range encoderChannels {
				publish(socket, logger, ch, processing.EncodeSensorReading(ch, now, float64(ticks*3)))
			}

			yaw := t / 10.0
			publish(socket, logger, "pheeno.odom", processing.EncodeSensorReading("pheeno.odom", now,
				0.01*float64(ticks), 0.0, 0.0, // position
				0.0, 0.0, math.Sin(yaw/2), math.Cos(yaw/2), // orientation
				0.2, 0.0, 0.0, // linear twist
				0.0, 0.0, 0.1)) // angular twist

			publish(socket, logger, "pheeno.imu.gyro", processing.EncodeSensorReading("pheeno.imu.gyro", now,
				rng.NormFloat64()*0.01, rng.NormFloat64()*0.01, 0.1))
			publish(socket, logger, "pheeno.imu.accel", processing.EncodeSensorReading("pheeno.imu.accel", now,
				rng.NormFloat64()*0.05, rng.NormFloat64()*0.05, 9.81))
			publish(socket, logger, "pheeno.imu.mag", processing.EncodeSensorReading("pheeno.imu.mag", now,
				22.0+rng.NormFloat64(), 5.0+rng.NormFloat64(), -42.0+rng.NormFloat64()))
		}
	}
}

func publish(socket *zmq.Socket, logger customlog.Logger, channel string, frame []byte) {
	if _, err := socket.SendBytes(frame, 0); err != nil {
		logger.Warnf("Failed to publish %s: %v", channel, err)
	}
}
