package processing

import (
	"encoding/json"

	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// FramePublisher defines the interface for republishing parsed telemetry.
type FramePublisher interface {
	PublishMessage(topic string, data []byte) error
}

// LoggingResultHandler logs processing results and republishes them as
// JSON for external observers (dashboards, loggers).
type LoggingResultHandler struct {
	logger    customlog.Logger
	publisher FramePublisher
}

// NewLoggingResultHandler creates a new logging result handler.
func NewLoggingResultHandler(logger customlog.Logger, publisher FramePublisher) *LoggingResultHandler {
	return &LoggingResultHandler{
		logger:    logger,
		publisher: publisher,
	}
}

// HandleResult handles a processed frame result.
func (h *LoggingResultHandler) HandleResult(result *ProcessResult) {
	if result.Error != nil {
		h.logger.Errorf("Error processing frame for channel '%s': %v", result.Channel, result.Error)
		return
	}

	h.logger.Debugf("Processed frame for channel '%s' (timestamp: %d)",
		result.Channel, result.Timestamp)

	if result.Data == nil {
		return
	}

	jsonData, err := json.Marshal(result.Data)
	if err != nil {
		h.logger.Errorf("Failed to marshal result for channel '%s': %v", result.Channel, err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishMessage("telemetry."+result.Channel, jsonData); err != nil {
			h.logger.Errorf("Failed to publish telemetry for channel '%s': %v", result.Channel, err)
		}
	}
}

// CreateHandlerFunc creates a ResultHandler function for the pools.
func (h *LoggingResultHandler) CreateHandlerFunc() ResultHandler {
	return func(processResult *ProcessResult) {
		if processResult == nil {
			h.logger.Errorf("Received nil ProcessResult")
			return
		}
		h.HandleResult(processResult)
	}
}
