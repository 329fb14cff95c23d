package processing

import (
	"sync"
	"time"

	telemetry "github.com/pheeno-robot/controller/pkg/flatbuffers/pheeno/telemetry"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// ProcessResult is the result of processing one sensor frame.
type ProcessResult struct {
	Channel   string
	Data      map[string]interface{}
	Timestamp int64
	Error     error
}

// ResultHandler is a function that handles processed results.
type ResultHandler func(result *ProcessResult)

// FrameProcessor processes sensor frames in a worker.
type FrameProcessor func(reading *telemetry.SensorReading) (map[string]interface{}, error)

// ProcessingPool is a fixed-size worker pool for one priority level.
type ProcessingPool struct {
	name          string
	workerCount   int
	logger        customlog.Logger
	frameQueue    chan *telemetry.SensorReading
	running       bool
	wg            sync.WaitGroup
	mu            sync.Mutex
	processor     FrameProcessor
	resultHandler ResultHandler
	queueSize     int
	metricsMu     sync.Mutex
	metrics       PoolMetrics
}

// PoolMetrics tracks metrics for a processing pool.
type PoolMetrics struct {
	ProcessedCount    int64 `json:"processed_count"`
	ErrorCount        int64 `json:"error_count"`
	QueuedCount       int64 `json:"queued_count"`
	LastProcessedTime int64 `json:"last_processed_time"`
	ProcessingTimeAvg int64 `json:"processing_time_avg_us"`
	ProcessingTimeMax int64 `json:"processing_time_max_us"`
}

// NewProcessingPool creates a new processing pool.
func NewProcessingPool(
	name string,
	workerCount int,
	queueSize int,
	logger customlog.Logger,
) *ProcessingPool {
	return &ProcessingPool{
		name:        name,
		workerCount: workerCount,
		queueSize:   queueSize,
		logger:      logger,
		frameQueue:  make(chan *telemetry.SensorReading, queueSize),
	}
}

// SetProcessor sets the frame processor function.
func (p *ProcessingPool) SetProcessor(processor FrameProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processor = processor
}

// SetResultHandler sets the result handler function.
func (p *ProcessingPool) SetResultHandler(handler ResultHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultHandler = handler
}

// ProcessFrame adds a sensor frame to the queue for processing. The enqueue
// never blocks: a full queue drops the frame, since only the latest reading
// per channel matters.
func (p *ProcessingPool) ProcessFrame(reading *telemetry.SensorReading) bool {
	// The enqueue stays under the mutex so Stop cannot close the queue
	// between the running check and the send.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		p.logger.Warnf("%s pool not running, discarding frame", p.name)
		return false
	}

	p.metricsMu.Lock()
	p.metrics.QueuedCount++
	p.metricsMu.Unlock()

	select {
	case p.frameQueue <- reading:
		return true
	default:
		p.logger.Warnf("%s pool queue is full, discarding frame", p.name)
		return false
	}
}

// Start starts the pool workers.
func (p *ProcessingPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.logger.Infof("Starting %s priority pool with %d workers", p.name, p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop stops the processing pool and waits for the workers to drain.
func (p *ProcessingPool) Stop() {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		return
	}

	p.running = false
	close(p.frameQueue)
	p.mu.Unlock()

	p.logger.Infof("Stopping %s priority pool", p.name)

	p.wg.Wait()
	p.logger.Infof("%s priority pool stopped", p.name)

	p.logMetrics()
}

// worker processes frames from the queue.
func (p *ProcessingPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugf("%s pool worker %d started", p.name, id)

	for reading := range p.frameQueue {
		channel := string(reading.Channel())
		p.logger.Debugf("%s pool worker %d processing frame for channel %s", p.name, id, channel)

		p.mu.Lock()
		processor := p.processor
		resultHandler := p.resultHandler
		p.mu.Unlock()

		if processor == nil {
			p.logger.Errorf("No frame processor set for %s pool", p.name)
			continue
		}

		startTime := time.Now()
		result, err := processor(reading)
		processingTime := time.Since(startTime).Microseconds()

		p.metricsMu.Lock()
		p.metrics.ProcessedCount++
		p.metrics.LastProcessedTime = time.Now().UnixNano()
		if p.metrics.ProcessingTimeAvg == 0 {
			p.metrics.ProcessingTimeAvg = processingTime
		} else {
			// simple moving average
			p.metrics.ProcessingTimeAvg = (p.metrics.ProcessingTimeAvg + processingTime) / 2
		}
		if processingTime > p.metrics.ProcessingTimeMax {
			p.metrics.ProcessingTimeMax = processingTime
		}
		if err != nil {
			p.metrics.ErrorCount++
		}
		p.metricsMu.Unlock()

		processResult := &ProcessResult{
			Channel:   channel,
			Data:      result,
			Timestamp: reading.TimestampNs(),
			Error:     err,
		}

		if err != nil {
			p.logger.Errorf("Error processing frame in %s pool: %v", p.name, err)
		}

		if resultHandler != nil {
			resultHandler(processResult)
		}
	}

	p.logger.Debugf("%s pool worker %d stopped", p.name, id)
}

// GetMetrics returns a copy of the current metrics.
func (p *ProcessingPool) GetMetrics() PoolMetrics {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	return p.metrics
}

// logMetrics logs the current metrics.
func (p *ProcessingPool) logMetrics() {
	metrics := p.GetMetrics()

	p.logger.Infof("%s pool metrics: processed=%d, errors=%d, avg_time=%dµs, max_time=%dµs",
		p.name, metrics.ProcessedCount, metrics.ErrorCount,
		metrics.ProcessingTimeAvg, metrics.ProcessingTimeMax)
}

// GetName returns the pool name.
func (p *ProcessingPool) GetName() string {
	return p.name
}

// GetQueueLength returns the current length of the frame queue.
func (p *ProcessingPool) GetQueueLength() int {
	return len(p.frameQueue)
}

// GetQueueCapacity returns the capacity of the frame queue.
func (p *ProcessingPool) GetQueueCapacity() int {
	return p.queueSize
}
