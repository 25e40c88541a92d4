package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Locator   LocatorConfig
	Converter ConverterConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3005
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds how long in-flight conversions may drain.
	ShutdownTimeout time.Duration // default: 30s
}

// BrowserConfig controls how each conversion's browser is launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker and as root).
	NoSandbox bool // default: true

	// IgnoreCertErrors disables TLS certificate checks inside the page.
	IgnoreCertErrors bool // default: true

	// ControlURL connects to an already running browser instead of launching one.
	// Each conversion then gets its own incognito context.
	ControlURL string

	// BlockRemote fails every http(s)/ws(s) request issued by the rendered document.
	BlockRemote bool // default: false
}

// LocatorConfig controls how the browser binary is found or provisioned.
type LocatorConfig struct {
	// OverridePath is an explicit binary path (CHROME_PATH or HTML2PDF_BROWSER_BIN).
	OverridePath string

	// InstallDir is the well-known directory the binary is installed into.
	InstallDir string // default: "/var/lib/html2pdf/chrome"

	// Download enables fetching the pinned release archive when nothing is installed.
	Download bool // default: true

	// Prefetch resolves (and possibly downloads) the binary at startup.
	Prefetch bool // default: false
}

// ConverterConfig controls the per-request conversion pipeline.
type ConverterConfig struct {
	// NavigationTimeout bounds the wait for the document load event.
	NavigationTimeout time.Duration // default: 30s

	// PrintTimeout is the watchdog for the print-to-PDF call.
	PrintTimeout time.Duration // default: 60s

	// CloseTimeout bounds tab close and browser teardown.
	CloseTimeout time.Duration // default: 10s

	// MaxConcurrent caps simultaneous conversions (browser processes). 0 = unlimited.
	MaxConcurrent int // default: 0
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP. <= 0 disables limiting.
	RequestsPerSecond float64 // default: 0

	// Burst is the maximum burst size per client IP.
	Burst int // default: 10
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   // default: true
	Path    string // default: "/metrics"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            envOr("HTML2PDF_HOST", "0.0.0.0"),
			Port:            envIntOr("HTML2PDF_PORT", 3005),
			Mode:            envOr("HTML2PDF_MODE", "release"),
			ShutdownTimeout: envDurationOr("HTML2PDF_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Browser: BrowserConfig{
			Headless:         envBoolOr("HTML2PDF_HEADLESS", true),
			NoSandbox:        envBoolOr("HTML2PDF_NO_SANDBOX", true),
			IgnoreCertErrors: envBoolOr("HTML2PDF_IGNORE_CERT_ERRORS", true),
			ControlURL:       os.Getenv("HTML2PDF_CONTROL_URL"),
			BlockRemote:      envBoolOr("HTML2PDF_BLOCK_REMOTE", false),
		},
		Locator: LocatorConfig{
			OverridePath: firstEnv("CHROME_PATH", "HTML2PDF_BROWSER_BIN"),
			InstallDir:   envOr("HTML2PDF_INSTALL_DIR", "/var/lib/html2pdf/chrome"),
			Download:     envBoolOr("HTML2PDF_DOWNLOAD", true),
			Prefetch:     envBoolOr("HTML2PDF_PREFETCH_BROWSER", false),
		},
		Converter: ConverterConfig{
			NavigationTimeout: envDurationOr("HTML2PDF_NAV_TIMEOUT", 30*time.Second),
			PrintTimeout:      envDurationOr("HTML2PDF_PRINT_TIMEOUT", 60*time.Second),
			CloseTimeout:      envDurationOr("HTML2PDF_CLOSE_TIMEOUT", 10*time.Second),
			MaxConcurrent:     envIntOr("HTML2PDF_MAX_CONCURRENT", 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("HTML2PDF_RATE_RPS", 0),
			Burst:             envIntOr("HTML2PDF_RATE_BURST", 10),
		},
		Metrics: MetricsConfig{
			Enabled: envBoolOr("HTML2PDF_METRICS", true),
			Path:    envOr("HTML2PDF_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level:  envOr("HTML2PDF_LOG_LEVEL", "info"),
			Format: envOr("HTML2PDF_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
