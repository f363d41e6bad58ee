package config

import "fmt"

// HTTPConfig defines the dashboard-facing HTTP server settings.
type HTTPConfig struct {
	Addr            string `json:"addr"`
	ShutdownSeconds int    `json:"shutdown_seconds"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownSeconds == 0 {
		c.ShutdownSeconds = 5
	}
}

// Validate checks mandatory fields.
func (c HTTPConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("http addr is required")
	}
	return nil
}

// ControlConfig tunes the orchestrator.
type ControlConfig struct {
	// DetuneDefault is the initial frequency offset of portal 2 in Hz.
	DetuneDefault float64 `json:"detune_default"`
	// ScanTimeoutSeconds bounds a single portal scan.
	ScanTimeoutSeconds int `json:"scan_timeout_seconds"`
	// AllowEmptyPayload lets a portal lock without a loaded payload.
	AllowEmptyPayload bool `json:"allow_empty_payload"`
}

// SetDefaults applies sane defaults.
func (c *ControlConfig) SetDefaults() {
	if c.DetuneDefault == 0 {
		c.DetuneDefault = 0.05
	}
	if c.ScanTimeoutSeconds == 0 {
		c.ScanTimeoutSeconds = 10
	}
}

// Validate checks bounds.
func (c ControlConfig) Validate() error {
	if c.ScanTimeoutSeconds < 1 {
		return fmt.Errorf("scan timeout must be at least 1 s")
	}
	return nil
}

// MetricsConfig defines settings for metrics sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}
