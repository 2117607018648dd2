package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	// Record store backend: leveldb | mysql | memory
	Backend      string
	DataDir      string
	MySQLDSN     string
	AuxRefPolicy string // compat | bound

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	// loadgen
	APIBase  string
	Workers  int
	RPS      int
	Users    int
	Dishes   int
	Bookings int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		Backend:      env("LEDGER_BACKEND", "leveldb"),
		DataDir:      env("LEDGER_DATA_DIR", "./data/ledger"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/booking?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		AuxRefPolicy: env("LEDGER_AUXREF_POLICY", "compat"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		APIBase:      env("LOADGEN_API_BASE", "http://localhost:8080"),
		Workers:      atoi("LOADGEN_WORKERS", 8),
		RPS:          atoi("LOADGEN_RPS", 25),
		Users:        atoi("LOADGEN_USERS", 20),
		Dishes:       atoi("LOADGEN_DISHES", 5),
		Bookings:     atoi("LOADGEN_BOOKINGS", 100),
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
