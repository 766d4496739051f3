package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string
	// Garmin Connect client configuration
	GarminEnabled    bool
	GarminSSOURL     string
	GarminConnectURL string
	GarminTimeout    time.Duration
	GarminUserAgent  string
	// SyncTimezone names the IANA location used for the today/yesterday
	// date anchors. Empty means the process local zone.
	SyncTimezone string
	// Daily cron job configuration
	CronSecret     string
	GarminEmail    string
	GarminPassword string
	// WhatsApp notification configuration
	WhatsAppToken      string
	WhatsAppPhoneID    string
	WhatsAppUserNumber string
	WhatsAppGraphURL   string
	WhatsAppTimeout    time.Duration
	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8787")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	// six sequential vendor calls plus the SSO round trips must fit
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 90*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "garminsync")

	cfg.GarminEnabled = envBool("GARMIN_ENABLED", true)
	cfg.GarminSSOURL = getenv("GARMIN_SSO_URL", "https://sso.garmin.com")
	cfg.GarminConnectURL = getenv("GARMIN_CONNECT_URL", "https://connect.garmin.com")
	cfg.GarminTimeout = envDuration("GARMIN_TIMEOUT", 30*time.Second)
	cfg.GarminUserAgent = getenv("GARMIN_USER_AGENT", "Mozilla/5.0")
	cfg.SyncTimezone = getenv("SYNC_TIMEZONE", "")

	cfg.CronSecret = getenv("CRON_SECRET", "")
	cfg.GarminEmail = getenv("GARMIN_EMAIL", "")
	cfg.GarminPassword = getenv("GARMIN_PASSWORD", "")

	cfg.WhatsAppToken = getenv("WHATSAPP_TOKEN", "")
	cfg.WhatsAppPhoneID = getenv("WHATSAPP_PHONE_ID", "")
	cfg.WhatsAppUserNumber = getenv("WHATSAPP_USER_NUMBER", "")
	cfg.WhatsAppGraphURL = getenv("WHATSAPP_GRAPH_URL", "https://graph.facebook.com/v18.0")
	cfg.WhatsAppTimeout = envDuration("WHATSAPP_TIMEOUT", 10*time.Second)

	// Tracing configuration
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0) // Default to 100% sampling for dev

	return cfg
}

// Location resolves SyncTimezone. Unknown or empty names fall back to time.Local.
func (c Config) Location() *time.Location {
	if c.SyncTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.SyncTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// HasGarminCredentials reports whether the cron credentials are configured.
func (c Config) HasGarminCredentials() bool {
	return c.GarminEmail != "" && c.GarminPassword != ""
}

// WhatsAppConfigured reports whether every WhatsApp setting needed to send a message is present.
func (c Config) WhatsAppConfigured() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneID != "" && c.WhatsAppUserNumber != ""
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
