package main

import (
	"flag"
	"net/http"

	"go.uber.org/zap"

	"blog/internal/app"
	"blog/internal/db"
	httpx "blog/internal/http"
	"blog/internal/storage"
	"blog/internal/storage/inmemory"
	"blog/internal/storage/postgres"
)

func main() {
	storageType := flag.String("storage", "in-memory", "storage backend (in-memory or postgres)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg := app.LoadConfig()

	var store storage.Store
	if *storageType == "postgres" {
		d, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			sugar.Fatalw("open database", "err", err)
		}
		if err := db.Migrate(d, "schema.sql"); err != nil {
			sugar.Fatalw("migrate", "err", err)
		}
		store = postgres.New(d)
	} else {
		store = inmemory.New()
	}

	srv := httpx.NewServer(store, cfg, sugar)
	sugar.Infow("listening", "addr", cfg.Addr, "storage", *storageType)
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		sugar.Fatalw("server stopped", "err", err)
	}
}
