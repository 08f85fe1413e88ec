// Package config handles configuration for the rackbook server: defaults, an
// optional JSON or YAML file, RB_* environment variables and finally
// command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Concurrency modes for collection writes.
const (
	// ModeGuarded serializes writers per collection and uses conditional PUTs.
	ModeGuarded = "guarded"
	// ModeLastWriterWins overwrites blobs unconditionally, like the legacy
	// deployment. Concurrent bookings can then race.
	ModeLastWriterWins = "last-writer-wins"
)

// Demo account passwords seeded into a fresh users collection. They are
// refused for the s3 backend, where the collection outlives the process.
const (
	DemoAdminPassword = "admin123"
	DemoUserPassword  = "user123"
)

// Blob store backends.
const (
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Config holds runtime settings for the rackbook server.
//
// SecretKey has no default: the server refuses to start without one.
// S3RootUser/S3RootPassword may stay empty, in which case the AWS default
// credential chain is used.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string

	SecretKey             string
	TokenValidityDuration time.Duration

	StoreBackend   string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3KeyPrefix    string
	S3UsePathStyle bool

	ConcurrencyMode string
	MaxWriteRetries int
	StoreTimeout    time.Duration
	IDStrategy      string

	RequireAuthForBookings bool
	EnforceMaxDuration     bool
	SeedAdminPassword      string
	SeedUserPassword       string

	RateLimitPerSec float64
	RateLimitBurst  int
	IdempotencyTTL  time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	HealthProbeInterval time.Duration
	ShutdownTimeout     time.Duration
	LogLevel            string
}

// LoadDefaults populates Config with development defaults. The seed
// passwords only matter the first time the users collection is created.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5000"
	c.EndpointAddrGRPC = ":50051"
	c.TokenValidityDuration = 24 * time.Hour
	c.StoreBackend = BackendS3
	c.S3Bucket = "rackbook"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.S3UsePathStyle = true
	c.ConcurrencyMode = ModeGuarded
	c.MaxWriteRetries = 3
	c.StoreTimeout = 10 * time.Second
	c.IDStrategy = "max"
	c.SeedAdminPassword = DemoAdminPassword
	c.SeedUserPassword = DemoUserPassword
	c.RateLimitPerSec = 10
	c.RateLimitBurst = 20
	c.IdempotencyTTL = 24 * time.Hour
	c.KafkaTopic = "rackbook.events"
	c.HealthProbeInterval = 15 * time.Second
	c.ShutdownTimeout = 5 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the file named by -c/-config,
// the environment and the command line.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, os.Args[1:])
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// Validate reports every setting the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("secret key must be set (-s or RB_SECRET_KEY)"))
	}
	if c.SeedAdminPassword == "" || c.SeedUserPassword == "" {
		errs = append(errs, errors.New("seed passwords must not be empty"))
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("token validity must be positive, got %s", c.TokenValidityDuration))
	}
	switch c.StoreBackend {
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 bucket must be set"))
		}
		if c.SeedAdminPassword == DemoAdminPassword || c.SeedUserPassword == DemoUserPassword {
			errs = append(errs, errors.New("seed passwords must be changed from the demo values for the s3 backend (RB_SEED_ADMIN_PASSWORD, RB_SEED_USER_PASSWORD)"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}
	switch c.ConcurrencyMode {
	case ModeGuarded, ModeLastWriterWins:
	default:
		errs = append(errs, fmt.Errorf("unknown concurrency mode %q", c.ConcurrencyMode))
	}
	switch c.IDStrategy {
	case "max", "count":
	default:
		errs = append(errs, fmt.Errorf("unknown id strategy %q", c.IDStrategy))
	}
	if c.MaxWriteRetries < 0 {
		errs = append(errs, fmt.Errorf("max write retries must not be negative, got %d", c.MaxWriteRetries))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout))
	}
	if c.RateLimitPerSec <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit and burst must be positive"))
	}

	return errors.Join(errs...)
}
