package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint   string
	PushgatewayURL string

	DBType            string
	DBPath            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	SnowflakeNode int64

	QuoteDeletePolicy   DeletePolicy
	SyncOnStartup       bool
	TaxTablePath        string
	DefaultJurisdiction string
}

// DeletePolicy decides what happens to a pipeline deal when its quote is deleted.
type DeletePolicy string

const (
	DeletePolicyOrphan  DeletePolicy = "orphan"
	DeletePolicyCascade DeletePolicy = "cascade"
)

func (p DeletePolicy) Valid() bool {
	return p == DeletePolicyOrphan || p == DeletePolicyCascade
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:             getenv("APP_SERVICE", "salescloser"),
		AppVersion:          getenv("APP_VERSION", "0.1.0"),
		Environment:         getenv("ENVIRONMENT", "development"),
		OTLPEndpoint:        getenv("OTLP_ENDPOINT", "localhost:4317"),
		PushgatewayURL:      strings.TrimSpace(getenv("PUSHGATEWAY_URL", "")),
		DBType:              strings.ToLower(getenv("DATABASE_TYPE", "sqlite")),
		DBPath:              getenv("DATABASE_PATH", "salescloser.db"),
		DBHost:              getenv("DATABASE_HOST", "localhost"),
		DBPort:              getenv("DATABASE_PORT", "5432"),
		DBName:              getenv("DATABASE_NAME", "salescloser"),
		DBUser:              getenv("DATABASE_USER", "postgres"),
		DBPassword:          getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:           getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:       getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:       getenvInt("DATABASE_MAX_OPEN_CONN", 4),
		DBConnMaxLifetime:   getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:   getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		SnowflakeNode:       getenvInt64("SNOWFLAKE_NODE", 1),
		QuoteDeletePolicy:   parseDeletePolicy(getenv("QUOTE_DELETE_POLICY", string(DeletePolicyOrphan))),
		SyncOnStartup:       getenvBool("SYNC_ON_STARTUP", true),
		TaxTablePath:        strings.TrimSpace(getenv("TAX_TABLE_PATH", "")),
		DefaultJurisdiction: strings.ToUpper(strings.TrimSpace(getenv("DEFAULT_JURISDICTION", "MA"))),
	}
}

func parseDeletePolicy(raw string) DeletePolicy {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case DeletePolicyCascade:
		return DeletePolicyCascade
	default:
		return DeletePolicyOrphan
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
