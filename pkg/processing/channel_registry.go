package processing

import (
	"sync"

	"github.com/pheeno-robot/controller/pkg/config"
	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/sensors"
)

// ChannelInfo holds the routing metadata for one wire channel.
type ChannelInfo struct {
	Channel      string
	Kind         string
	Priority     string
	Proximity    sensors.ProximityChannel // valid when Kind == proximity
	Encoder      sensors.EncoderChannel   // valid when Kind == encoder
	StatCount    int64
	LastReceived int64
}

// ChannelRegistry maintains the mapping from wire channel names to
// snapshot slots, plus per-channel receive statistics.
type ChannelRegistry struct {
	logger   customlog.Logger
	channels map[string]*ChannelInfo
	mu       sync.RWMutex
}

// NewChannelRegistry creates an empty channel registry.
func NewChannelRegistry(logger customlog.Logger) *ChannelRegistry {
	return &ChannelRegistry{
		logger:   logger,
		channels: make(map[string]*ChannelInfo),
	}
}

// LoadFromConfig replaces the registry contents with the channel mappings
// from the operational config. Mappings with unknown targets are skipped
// with a log line rather than failing the whole load.
func (r *ChannelRegistry) LoadFromConfig(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels = make(map[string]*ChannelInfo)

	for _, mapping := range cfg.ChannelMappings {
		priority := mapping.Priority
		if priority == "" {
			priority = cfg.Defaults.Priority
		}

		info := &ChannelInfo{
			Channel:  mapping.Channel,
			Kind:     mapping.Kind,
			Priority: priority,
		}

		switch mapping.Kind {
		case config.KindProximity:
			ch, err := sensors.ParseProximityChannel(mapping.Target)
			if err != nil {
				r.logger.Errorf("Skipping channel mapping %q: %v", mapping.Channel, err)
				continue
			}
			info.Proximity = ch
		case config.KindEncoder:
			ch, err := sensors.ParseEncoderChannel(mapping.Target)
			if err != nil {
				r.logger.Errorf("Skipping channel mapping %q: %v", mapping.Channel, err)
				continue
			}
			info.Encoder = ch
		}

		r.channels[mapping.Channel] = info
	}

	r.logger.Infof("Loaded %d channels into registry", len(r.channels))
}

// GetChannelPriority gets the priority for a channel.
func (r *ChannelRegistry) GetChannelPriority(channel string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.channels[channel]
	if !exists {
		return "", false
	}
	return info.Priority, true
}

// GetChannelInfo gets a copy of the routing info for a channel.
func (r *ChannelRegistry) GetChannelInfo(channel string) (ChannelInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.channels[channel]
	if !exists {
		return ChannelInfo{}, false
	}
	return *info, true
}

// UpdateChannelStats updates receive statistics for a channel. Unknown
// channels are ignored; routing is config-driven and a frame for an
// unmapped channel is already reported by the processor.
func (r *ChannelRegistry) UpdateChannelStats(channel string, timestamp int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.channels[channel]
	if !exists {
		return
	}
	info.StatCount++
	info.LastReceived = timestamp
}

// GetAllChannels returns a list of all registered channel names.
func (r *ChannelRegistry) GetAllChannels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]string, 0, len(r.channels))
	for channel := range r.channels {
		channels = append(channels, channel)
	}
	return channels
}

// GetChannelStats returns a map of per-channel statistics for the
// diagnostics API.
func (r *ChannelRegistry) GetChannelStats() map[string]map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]map[string]interface{})
	for channel, info := range r.channels {
		stats[channel] = map[string]interface{}{
			"count":         info.StatCount,
			"last_received": info.LastReceived,
			"kind":          info.Kind,
			"priority":      info.Priority,
		}
	}
	return stats
}
