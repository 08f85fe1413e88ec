package config

import (
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/rackbook/internal/flagx"
	"github.com/dmitrijs2005/rackbook/internal/timex"
)

// FileConfig is the on-disk shape of the configuration, used only while
// reading a JSON or YAML file. Empty values leave the current setting alone.
type FileConfig struct {
	EndpointAddrHTTP       string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC       string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	SecretKey              string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration  timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	StoreBackend           string         `json:"store_backend" yaml:"store_backend"`
	S3RootUser             string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region               string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3KeyPrefix            string         `json:"s3_key_prefix" yaml:"s3_key_prefix"`
	S3UsePathStyle         *bool          `json:"s3_use_path_style" yaml:"s3_use_path_style"`
	ConcurrencyMode        string         `json:"concurrency_mode" yaml:"concurrency_mode"`
	MaxWriteRetries        *int           `json:"max_write_retries" yaml:"max_write_retries"`
	StoreTimeout           timex.Duration `json:"store_timeout" yaml:"store_timeout"`
	IDStrategy             string         `json:"id_strategy" yaml:"id_strategy"`
	RequireAuthForBookings *bool          `json:"require_auth_for_bookings" yaml:"require_auth_for_bookings"`
	EnforceMaxDuration     *bool          `json:"enforce_max_duration" yaml:"enforce_max_duration"`
	SeedAdminPassword      string         `json:"seed_admin_password" yaml:"seed_admin_password"`
	SeedUserPassword       string         `json:"seed_user_password" yaml:"seed_user_password"`
	RateLimitPerSec        float64        `json:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
	RateLimitBurst         int            `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	IdempotencyTTL         timex.Duration `json:"idempotency_ttl" yaml:"idempotency_ttl"`
	KafkaBrokers           []string       `json:"kafka_brokers" yaml:"kafka_brokers"`
	KafkaTopic             string         `json:"kafka_topic" yaml:"kafka_topic"`
	HealthProbeInterval    timex.Duration `json:"health_probe_interval" yaml:"health_probe_interval"`
	ShutdownTimeout        timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel               string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file named by -c/-config onto config. Nothing
// happens when no file is given; an unreadable or malformed file panics, as
// the server cannot start with a config the operator did not intend.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	if flagx.IsYAML(path) {
		err = yaml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.SecretKey, fc.SecretKey)
	setDuration(&c.TokenValidityDuration, fc.TokenValidityDuration)
	setString(&c.StoreBackend, fc.StoreBackend)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3KeyPrefix, fc.S3KeyPrefix)
	if fc.S3UsePathStyle != nil {
		c.S3UsePathStyle = *fc.S3UsePathStyle
	}
	setString(&c.ConcurrencyMode, fc.ConcurrencyMode)
	if fc.MaxWriteRetries != nil {
		c.MaxWriteRetries = *fc.MaxWriteRetries
	}
	setDuration(&c.StoreTimeout, fc.StoreTimeout)
	setString(&c.IDStrategy, fc.IDStrategy)
	if fc.RequireAuthForBookings != nil {
		c.RequireAuthForBookings = *fc.RequireAuthForBookings
	}
	if fc.EnforceMaxDuration != nil {
		c.EnforceMaxDuration = *fc.EnforceMaxDuration
	}
	setString(&c.SeedAdminPassword, fc.SeedAdminPassword)
	setString(&c.SeedUserPassword, fc.SeedUserPassword)
	if fc.RateLimitPerSec > 0 {
		c.RateLimitPerSec = fc.RateLimitPerSec
	}
	if fc.RateLimitBurst > 0 {
		c.RateLimitBurst = fc.RateLimitBurst
	}
	setDuration(&c.IdempotencyTTL, fc.IdempotencyTTL)
	if len(fc.KafkaBrokers) > 0 {
		c.KafkaBrokers = fc.KafkaBrokers
	}
	setString(&c.KafkaTopic, fc.KafkaTopic)
	setDuration(&c.HealthProbeInterval, fc.HealthProbeInterval)
	setDuration(&c.ShutdownTimeout, fc.ShutdownTimeout)
	setString(&c.LogLevel, fc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
