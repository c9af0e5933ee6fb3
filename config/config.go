package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Oracle transport
	NatsURL  string
	OracleID string

	// HTTP server
	HTTPAddr string

	// Capability keys
	AdminKey    string
	DispatchKey string

	// Oracle request parameters
	OracleKeyID          string
	OracleSubscriptionID string
	OracleConfirmations  int
	OracleGasBudget      uint64
	OraclePaymentMode    string

	// Dice game settings
	MinStake int64
	MaxStake int64

	// Raffle settings
	EntranceFee        int64
	RoundInterval      time.Duration
	KeeperPollInterval time.Duration

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		NatsURL:     os.Getenv("NATS_URL"),
		OracleID:    os.Getenv("ORACLE_ID"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),

		AdminKey:    os.Getenv("ADMIN_KEY"),
		DispatchKey: os.Getenv("DISPATCH_KEY"),

		OracleKeyID:          os.Getenv("ORACLE_KEY_ID"),
		OracleSubscriptionID: os.Getenv("ORACLE_SUBSCRIPTION_ID"),
		OraclePaymentMode:    os.Getenv("ORACLE_PAYMENT_MODE"),

		// Game settings with defaults
		OracleConfirmations: 3,
		OracleGasBudget:     500000,
		MinStake:            100,
		MaxStake:            100000,
		EntranceFee:         500,
		RoundInterval:       1 * time.Hour,
		KeeperPollInterval:  15 * time.Second,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.NatsURL == "" {
		config.NatsURL = "nats://localhost:4222"
	}
	if config.OraclePaymentMode == "" {
		config.OraclePaymentMode = "native"
	}

	// Override defaults if environment variables are set
	if v := os.Getenv("ORACLE_CONFIRMATIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.OracleConfirmations = parsed
		}
	}
	if v := os.Getenv("ORACLE_GAS_BUDGET"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.OracleGasBudget = parsed
		}
	}
	if v := os.Getenv("MIN_STAKE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MinStake = parsed
		}
	}
	if v := os.Getenv("MAX_STAKE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxStake = parsed
		}
	}
	if v := os.Getenv("ENTRANCE_FEE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.EntranceFee = parsed
		}
	}
	if v := os.Getenv("ROUND_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.RoundInterval = parsed
		}
	}
	if v := os.Getenv("KEEPER_POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.KeeperPollInterval = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminKey == "" {
			return nil, fmt.Errorf("ADMIN_KEY is required")
		}
		if config.DispatchKey == "" {
			return nil, fmt.Errorf("DISPATCH_KEY is required")
		}
		if config.OracleID == "" {
			return nil, fmt.Errorf("ORACLE_ID is required")
		}
	}

	return config, nil
}
