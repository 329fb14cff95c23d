package processing

import (
	"sync"
	"testing"

	telemetry "github.com/pheeno-robot/controller/pkg/flatbuffers/pheeno/telemetry"
)

func TestPoolProcessesFrames(t *testing.T) {
	pool := NewProcessingPool("test", 2, 8, testLogger(t))

	var mu sync.Mutex
	processed := 0
	pool.SetProcessor(func(reading *telemetry.SensorReading) (map[string]interface{}, error) {
		return map[string]interface{}{"channel": string(reading.Channel())}, nil
	})
	pool.SetResultHandler(func(result *ProcessResult) {
		mu.Lock()
		processed++
		mu.Unlock()
	})

	pool.Start()
	frame := DecodeSensorReading(EncodeSensorReading("pheeno.ir.center", 1, 42.0))
	for i := 0; i < 5; i++ {
		if !pool.ProcessFrame(frame) {
			t.Fatalf("Frame %d rejected by running pool", i)
		}
	}
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	if processed != 5 {
		t.Errorf("Expected 5 processed frames after drain, got %d", processed)
	}
}

func TestPoolRejectsFramesWhenStopped(t *testing.T) {
	pool := NewProcessingPool("test", 1, 4, testLogger(t))
	frame := DecodeSensorReading(EncodeSensorReading("pheeno.ir.center", 1, 42.0))

	if pool.ProcessFrame(frame) {
		t.Errorf("Never-started pool must reject frames")
	}

	pool.Start()
	pool.Stop()
	if pool.ProcessFrame(frame) {
		t.Errorf("Stopped pool must reject frames")
	}
}

func TestPoolStopDuringConcurrentEnqueue(t *testing.T) {
	// Producers hammer the queue while the pool shuts down. Every enqueue
	// must either land or be rejected cleanly, never send on the closed
	// queue.
	pool := NewProcessingPool("test", 2, 4, testLogger(t))
	pool.SetProcessor(func(reading *telemetry.SensorReading) (map[string]interface{}, error) {
		return nil, nil
	})
	pool.Start()

	frame := DecodeSensorReading(EncodeSensorReading("pheeno.ir.center", 1, 42.0))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				pool.ProcessFrame(frame)
			}
		}()
	}

	pool.Stop()
	wg.Wait()

	if pool.ProcessFrame(frame) {
		t.Errorf("Stopped pool must reject frames")
	}
}
