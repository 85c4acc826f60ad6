package config

import (
	"database/sql"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig hace explícita la configuración del pool de conexiones que
// antes vivía como estado global del engine. Se pasa al abrir el store.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Apply configura el pool de un *sql.DB.
func (p PoolConfig) Apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
}

type Config struct {
	HTTPPort string

	DBDriver    string // sqlite | postgres | mongo
	SQLitePath  string
	PostgresDSN string
	MongoURI    string
	MongoDB     string
	Pool        PoolConfig

	RedisAddr string
	CacheTTL  time.Duration

	UseKafka     bool
	KafkaBrokers []string
	KafkaTopic   string

	ClickHouseAddr string
	ClickHouseDB   string
	AuditPeriod    time.Duration
	AuditLimit     int

	AuthToken     string
	AllowedOrigin string
	PageSize      int
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getEnvInt := func(key string, fallback int) int {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return fallback
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		SQLitePath:  getEnv("SQLITE_PATH", "./crudlab.db"),
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/crudlab"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "crudlab"),
		Pool: PoolConfig{
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SECS", 300)) * time.Second,
		},

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  5 * time.Minute,

		UseKafka:     getEnv("USE_KAFKA", "") == "true",
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   getEnv("KAFKA_TOPIC", "item-events"),

		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "crudlab"),
		AuditPeriod:    time.Duration(getEnvInt("AUDIT_PERIOD_SECS", 1)) * time.Second,
		AuditLimit:     getEnvInt("AUDIT_LIMIT", 100),

		AuthToken:     getEnv("AUTH_TOKEN", ""),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:8000"),
		PageSize:      getEnvInt("PAGE_SIZE", 10),
	}
}
