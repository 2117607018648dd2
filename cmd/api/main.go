package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "restaurant_booking/internal/adapters/http_server"
	"restaurant_booking/internal/adapters/observability"
	redisad "restaurant_booking/internal/adapters/redis"
	"restaurant_booking/internal/app"
	"restaurant_booking/internal/ledger"
	"restaurant_booking/internal/shared"
	"restaurant_booking/internal/storage/kv"
	mysqlkv "restaurant_booking/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	// record store backend
	var backend kv.Store
	switch cfg.Backend {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		backend = mysqlkv.New(db)
	case "memory":
		backend = kv.NewMemStore()
	default:
		ldb, err := kv.OpenLevelDB(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("open leveldb failed")
		}
		backend = ldb
	}
	defer backend.Close()
	log.Info().Str("backend", cfg.Backend).Msg("record store ready")

	// deps
	store := ledger.New(backend)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	b := app.NewBookingService(store, cache, app.AuxRefPolicy(cfg.AuxRefPolicy))
	q := app.NewQueryService(store, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{B: b, Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Str("auxref_policy", cfg.AuxRefPolicy).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
