package config

import (
	"os"
	"strconv"
	"time"

	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Config captures everything the server needs to reach its backends: the
// document store, the chain bridge with its two signer identities, and the
// media upload service.
type Config struct {
	Addr string

	MongoURI      string
	MongoDatabase string

	ChainBridgeURL    string
	ChainBridgeAPIKey string
	ChainTimeout      time.Duration
	AdminAddress      domain.WalletAddress
	InstituteAddress  domain.WalletAddress
	GasLimit          uint64

	UploadURL     string
	UploadAPIKey  string
	UploadTimeout time.Duration

	RequestTimeout time.Duration
	TracingEnabled bool
}

// FromEnv builds the config from environment variables so main stays lean.
// The two signer addresses are required; everything else has a development
// default.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:           envOr("CERTLEDGER_ADDR", ":8080"),
		MongoURI:       envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  envOr("MONGO_DATABASE", "certledger"),
		ChainBridgeURL: envOr("CHAIN_BRIDGE_URL", "http://localhost:8545"),
		UploadURL:      envOr("UPLOAD_URL", "http://localhost:9000"),

		ChainBridgeAPIKey: os.Getenv("CHAIN_BRIDGE_API_KEY"),
		UploadAPIKey:      os.Getenv("UPLOAD_API_KEY"),

		ChainTimeout:   durationOr("CHAIN_TIMEOUT", 60*time.Second),
		UploadTimeout:  durationOr("UPLOAD_TIMEOUT", 30*time.Second),
		RequestTimeout: durationOr("REQUEST_TIMEOUT", 90*time.Second),
		TracingEnabled: os.Getenv("TRACING_ENABLED") == "true",
	}

	admin, err := domain.ParseWalletAddress(os.Getenv("ADMIN_ADDRESS"))
	if err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeValidation, "ADMIN_ADDRESS is required")
	}
	institute, err := domain.ParseWalletAddress(os.Getenv("INSTITUTE_ADDRESS"))
	if err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeValidation, "INSTITUTE_ADDRESS is required")
	}
	cfg.AdminAddress = admin
	cfg.InstituteAddress = institute

	if v := os.Getenv("GAS_LIMIT"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, dErrors.New(dErrors.CodeValidation, "GAS_LIMIT must be a positive integer")
		}
		cfg.GasLimit = limit
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
