package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/flagx"
)

var knownFlags = []string{
	"-a", "-grpc", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-k",
	"-store", "-mode", "-ids", "-auth-bookings", "-max-duration", "-kafka",
	"-log-level",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string          HTTP bind address (":5000")
//	-grpc string       gRPC health bind address (":50051")
//	-s string          JWT HMAC secret key
//	-t int             token validity, minutes
//	-u / -p string     S3 access key / secret key
//	-b string          S3 bucket
//	-g string          S3 region
//	-e string          S3 base endpoint
//	-k string          S3 key prefix
//	-store string      blob backend: s3 | memory
//	-mode string       guarded | last-writer-wins
//	-ids string        id allocation: max | count
//	-auth-bookings     require a token for booking mutations
//	-max-duration      reject bookings longer than the device's max_duration
//	-kafka string      comma separated Kafka brokers
//	-log-level string  debug | info | warn | error
//
// Only the flags above are looked at, so -c/-config and foreign flags never
// make parsing fail.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("rackbook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3KeyPrefix, "k", config.S3KeyPrefix, "S3 key prefix")
	fs.StringVar(&config.StoreBackend, "store", config.StoreBackend, "blob store backend")
	fs.StringVar(&config.ConcurrencyMode, "mode", config.ConcurrencyMode, "collection write mode")
	fs.StringVar(&config.IDStrategy, "ids", config.IDStrategy, "id allocation strategy")
	fs.BoolVar(&config.RequireAuthForBookings, "auth-bookings", config.RequireAuthForBookings, "require token for booking mutations")
	fs.BoolVar(&config.EnforceMaxDuration, "max-duration", config.EnforceMaxDuration, "enforce device max_duration")
	kafka := fs.String("kafka", "", "Kafka brokers")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		case "kafka":
			config.KafkaBrokers = splitList(*kafka)
		}
	})
}
