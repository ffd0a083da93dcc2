package metrics

import (
	"encoding/json"
	"time"
)

// SampleInfo is the metrics record of one sampling run.
type SampleInfo struct {
	Image      string        `json:"image"`
	Points     string        `json:"points"`
	Mode       string        `json:"mode"`
	Radius     int           `json:"radius"`
	NumBands   int           `json:"num_bands"`
	NumPoints  int           `json:"num_points"`
	NumSamples int           `json:"num_samples"`
	CacheHit   bool          `json:"cache_hit"`
	Duration   time.Duration `json:"duration"`
}

type MetricsCollector struct {
	Info      *SampleInfo
	startTime time.Time
	logger    Logger
}

func NewMetricsCollector(logger Logger) *MetricsCollector {
	return &MetricsCollector{
		Info:      &SampleInfo{},
		startTime: time.Now(),
		logger:    logger,
	}
}

func (mc *MetricsCollector) Log() {
	if mc.logger == nil {
		return
	}
	mc.Info.Duration = time.Since(mc.startTime)
	mc.logger.Log(mc.Info)
}

func (info *SampleInfo) ToJSON() (string, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
