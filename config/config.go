package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the endpoints and tunables for the session and
// notification subsystem. All fields are read from the environment with
// working fallbacks so the module runs against a local stack unconfigured.
type Config struct {
	// IdentityServiceURL is the base URL of the customer/staff identity
	// service (POST /login, POST /register).
	IdentityServiceURL string
	// DriverServiceURL is the base URL of the independent driver
	// credential service.
	DriverServiceURL string
	// EventStoreURL is the base URL of the notification event store.
	// The service being absent entirely is a tolerated condition.
	EventStoreURL string
	// StorePath is the sqlite file backing the persistent identity store.
	StorePath string
	// GraceWindow bounds how long an unverified restored identity is
	// trusted by the authorization guard before it stops deferring.
	GraceWindow time.Duration
	// RequestTimeout applies to every remote call.
	RequestTimeout time.Duration
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		IdentityServiceURL: getEnv("BMS_IDENTITY_URL", "http://localhost:8080/api"),
		DriverServiceURL:   getEnv("BMS_DRIVER_URL", "http://localhost:8080/api/driver"),
		EventStoreURL:      getEnv("BMS_EVENTS_URL", "http://localhost:8080/api"),
		StorePath:          getEnv("BMS_STORE_PATH", "bms_session.db"),
		GraceWindow:        getEnvDuration("BMS_GRACE_WINDOW_SECONDS", 5*time.Minute),
		RequestTimeout:     getEnvDuration("BMS_REQUEST_TIMEOUT_SECONDS", 10*time.Second),
	}
}
