package processing

import (
	"fmt"
	"sync"
	"time"

	telemetry "github.com/pheeno-robot/controller/pkg/flatbuffers/pheeno/telemetry"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// GetCurrentTimestamp gets the current timestamp in nanoseconds.
func GetCurrentTimestamp() int64 {
	return time.Now().UnixNano()
}

// Constants for priority levels.
const (
	PriorityHigh     = "HIGH"
	PriorityStandard = "STANDARD"
	PriorityLow      = "LOW"
)

// FrameDirector routes sensor frames to the appropriate processing pool
// based on the channel's configured priority.
type FrameDirector struct {
	logger           customlog.Logger
	highPriorityPool *ProcessingPool
	standardPool     *ProcessingPool
	lowPriorityPool  *ProcessingPool
	channelRegistry  *ChannelRegistry
	processor        FrameProcessor
	resultHandler    ResultHandler
	running          bool
	mu               sync.RWMutex

	defaultQueueSize int
}

// DirectorOptions holds configuration options for the FrameDirector.
type DirectorOptions struct {
	DefaultQueueSize int
}

// NewFrameDirector creates a new frame director.
func NewFrameDirector(
	logger customlog.Logger,
	channelRegistry *ChannelRegistry,
	options *DirectorOptions,
) *FrameDirector {
	if options == nil {
		options = &DirectorOptions{
			DefaultQueueSize: 100,
		}
	}

	return &FrameDirector{
		logger:           logger,
		channelRegistry:  channelRegistry,
		defaultQueueSize: options.DefaultQueueSize,
	}
}

// Initialize creates the processing pools with the given worker counts.
func (d *FrameDirector) Initialize(highWorkers, standardWorkers, lowWorkers int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.highPriorityPool = NewProcessingPool(PriorityHigh, highWorkers, d.defaultQueueSize, d.logger)
	d.standardPool = NewProcessingPool(PriorityStandard, standardWorkers, d.defaultQueueSize, d.logger)
	d.lowPriorityPool = NewProcessingPool(PriorityLow, lowWorkers, d.defaultQueueSize, d.logger)

	d.logger.Infof("Frame Director initialized with pools: HIGH(%d), STANDARD(%d), LOW(%d)",
		highWorkers, standardWorkers, lowWorkers)
}

// SetProcessor sets the frame processor function for all pools.
func (d *FrameDirector) SetProcessor(processor FrameProcessor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.processor = processor

	if d.highPriorityPool != nil {
		d.highPriorityPool.SetProcessor(processor)
	}
	if d.standardPool != nil {
		d.standardPool.SetProcessor(processor)
	}
	if d.lowPriorityPool != nil {
		d.lowPriorityPool.SetProcessor(processor)
	}
}

// SetResultHandler sets the result handler function for all pools.
func (d *FrameDirector) SetResultHandler(handler ResultHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resultHandler = handler

	if d.highPriorityPool != nil {
		d.highPriorityPool.SetResultHandler(handler)
	}
	if d.standardPool != nil {
		d.standardPool.SetResultHandler(handler)
	}
	if d.lowPriorityPool != nil {
		d.lowPriorityPool.SetResultHandler(handler)
	}
}

// RouteFrame routes a sensor frame to the pool matching its channel
// priority. Channels without a configured priority are treated as
// STANDARD.
func (d *FrameDirector) RouteFrame(reading *telemetry.SensorReading) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		return fmt.Errorf("frame director is not running")
	}

	channel := string(reading.Channel())

	priority, exists := d.channelRegistry.GetChannelPriority(channel)
	if !exists {
		d.logger.Warnf("No priority found for channel '%s', using STANDARD", channel)
		priority = PriorityStandard
	}
	d.channelRegistry.UpdateChannelStats(channel, reading.TimestampNs())

	var successful bool
	switch priority {
	case PriorityHigh:
		d.logger.Debugf("Routing frame for channel '%s' to HIGH priority pool", channel)
		successful = d.highPriorityPool.ProcessFrame(reading)
	case PriorityLow:
		d.logger.Debugf("Routing frame for channel '%s' to LOW priority pool", channel)
		successful = d.lowPriorityPool.ProcessFrame(reading)
	default:
		d.logger.Debugf("Routing frame for channel '%s' to STANDARD priority pool", channel)
		successful = d.standardPool.ProcessFrame(reading)
	}

	if !successful {
		return fmt.Errorf("failed to enqueue frame for channel '%s' (priority: %s)", channel, priority)
	}

	return nil
}

// Start starts all processing pools.
func (d *FrameDirector) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	d.running = true
	d.logger.Infof("Starting Frame Director")

	d.highPriorityPool.Start()
	d.standardPool.Start()
	d.lowPriorityPool.Start()
}

// Stop stops all processing pools.
func (d *FrameDirector) Stop() {
	d.mu.Lock()
	running := d.running
	d.running = false
	d.mu.Unlock()

	if !running {
		return
	}

	d.logger.Infof("Stopping Frame Director")

	d.highPriorityPool.Stop()
	d.standardPool.Stop()
	d.lowPriorityPool.Stop()

	d.logger.Infof("Frame Director stopped")
}

// GetPoolMetrics returns metrics for all pools.
func (d *FrameDirector) GetPoolMetrics() map[string]PoolMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()

	metrics := make(map[string]PoolMetrics)

	if d.highPriorityPool != nil {
		metrics[PriorityHigh] = d.highPriorityPool.GetMetrics()
	}
	if d.standardPool != nil {
		metrics[PriorityStandard] = d.standardPool.GetMetrics()
	}
	if d.lowPriorityPool != nil {
		metrics[PriorityLow] = d.lowPriorityPool.GetMetrics()
	}

	return metrics
}
