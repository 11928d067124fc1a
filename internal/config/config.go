package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Booking tunables (hold
// duration, tax rate) live here rather than as package globals so that
// tests and deployments can vary them; the engine receives them at
// construction time.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret used to verify bearer tokens
	HoldMinutes   int           // how long a seat hold lasts before it lapses
	TaxRateBps    int           // tax rate in basis points (1800 = 18%)
	SweepInterval time.Duration // how often the reclaim sweep runs
	SeatMapTTL    time.Duration // TTL for cached seat maps
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message;
// tunables fall back to documented defaults.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),    // environment (dev/test/prod)
		Port:          must("APP_PORT"),   // port to bind the HTTP server
		DBUser:        must("DB_USER"),    // database user
		DBPass:        os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:        must("DB_HOST"),    // database host
		DBPort:        must("DB_PORT"),    // database port
		DBName:        must("DB_NAME"),    // database name
		JWTSecret:     must("JWT_SECRET"), // secret for verifying bearer tokens
		HoldMinutes:   intDefault("HOLD_MINUTES", 2),
		TaxRateBps:    intDefault("TAX_RATE_BPS", 1800),
		SweepInterval: durDefault("SWEEP_INTERVAL", time.Minute),
		SeatMapTTL:    durDefault("SEATMAP_CACHE_TTL", 10*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intDefault reads an integer environment variable, falling back to
// def when unset.  An unparsable value is fatal rather than silently
// ignored.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// durDefault reads a duration environment variable (e.g. "30s", "2m"),
// falling back to def when unset.
func durDefault(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
