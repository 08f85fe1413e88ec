package config

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables understood by the server.
const (
	EnvHTTPAddr               = "RB_HTTP_ADDR"
	EnvGRPCAddr               = "RB_GRPC_ADDR"
	EnvSecretKey              = "RB_SECRET_KEY"
	EnvTokenValidity          = "RB_TOKEN_VALIDITY"
	EnvStoreBackend           = "RB_STORE_BACKEND"
	EnvS3User                 = "RB_S3_ACCESS_KEY"
	EnvS3Password             = "RB_S3_SECRET_KEY"
	EnvS3Bucket               = "RB_S3_BUCKET"
	EnvS3Region               = "RB_S3_REGION"
	EnvS3Endpoint             = "RB_S3_ENDPOINT"
	EnvS3KeyPrefix            = "RB_S3_KEY_PREFIX"
	EnvConcurrencyMode        = "RB_CONCURRENCY_MODE"
	EnvIDStrategy             = "RB_ID_STRATEGY"
	EnvRequireAuthForBookings = "RB_REQUIRE_AUTH_FOR_BOOKINGS"
	EnvEnforceMaxDuration     = "RB_ENFORCE_MAX_DURATION"
	EnvSeedAdminPassword      = "RB_SEED_ADMIN_PASSWORD"
	EnvSeedUserPassword       = "RB_SEED_USER_PASSWORD"
	EnvKafkaBrokers           = "RB_KAFKA_BROKERS"
	EnvKafkaTopic             = "RB_KAFKA_TOPIC"
	EnvLogLevel               = "RB_LOG_LEVEL"
)

// parseEnv overlays environment variables. Values that fail to parse are
// ignored and the previous setting stays.
func parseEnv(c *Config, lookup func(string) (string, bool)) {
	str := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(&c.EndpointAddrHTTP, EnvHTTPAddr)
	str(&c.EndpointAddrGRPC, EnvGRPCAddr)
	str(&c.SecretKey, EnvSecretKey)
	str(&c.StoreBackend, EnvStoreBackend)
	str(&c.S3RootUser, EnvS3User)
	str(&c.S3RootPassword, EnvS3Password)
	str(&c.S3Bucket, EnvS3Bucket)
	str(&c.S3Region, EnvS3Region)
	str(&c.S3BaseEndpoint, EnvS3Endpoint)
	str(&c.S3KeyPrefix, EnvS3KeyPrefix)
	str(&c.ConcurrencyMode, EnvConcurrencyMode)
	str(&c.IDStrategy, EnvIDStrategy)
	str(&c.SeedAdminPassword, EnvSeedAdminPassword)
	str(&c.SeedUserPassword, EnvSeedUserPassword)
	str(&c.KafkaTopic, EnvKafkaTopic)
	str(&c.LogLevel, EnvLogLevel)

	if v, ok := lookup(EnvTokenValidity); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenValidityDuration = d
		}
	}
	if v, ok := lookup(EnvRequireAuthForBookings); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RequireAuthForBookings = b
		}
	}
	if v, ok := lookup(EnvEnforceMaxDuration); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnforceMaxDuration = b
		}
	}
	if v, ok := lookup(EnvKafkaBrokers); ok && v != "" {
		c.KafkaBrokers = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
