package models

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string       `json:"status"` // "healthy" or "degraded"
	Uptime  string       `json:"uptime"`
	Version string       `json:"version"`
	Browser BrowserStats `json:"browser"`
}

// BrowserStats reports the converter's browser usage.
type BrowserStats struct {
	// InFlight is the number of conversions currently holding a browser.
	InFlight int `json:"in_flight"`

	// MaxConcurrent is the configured cap; 0 means unlimited.
	MaxConcurrent int `json:"max_concurrent"`

	// BinaryPath is the resolved browser binary, empty until first resolution.
	BinaryPath string `json:"binary_path,omitempty"`

	// Mode is "launch" (one browser per request) or "remote" (control URL).
	Mode string `json:"mode"`
}
