package config

// SnapshotConfig drives the periodic summary publication.
type SnapshotConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
	TimeoutSeconds  int  `json:"timeout_seconds"`
	// OnCommand also publishes when the MQTT command topic asks for it.
	OnCommand bool `json:"on_command"`
}

func (c SnapshotConfig) Interval() int {
	if c.IntervalSeconds <= 0 {
		return 3600
	}
	return c.IntervalSeconds
}

func (c SnapshotConfig) Timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}
