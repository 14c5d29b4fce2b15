package main

import (
	"log"
	"net/http"
	"os"

	"github.com/jackbombadeur/RPGCompanion/internal/config"
	"github.com/jackbombadeur/RPGCompanion/internal/db"
	"github.com/jackbombadeur/RPGCompanion/internal/game"
	"github.com/jackbombadeur/RPGCompanion/internal/server"
	"github.com/jackbombadeur/RPGCompanion/internal/store/memory"
	"github.com/jackbombadeur/RPGCompanion/internal/store/postgres"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("store setup failed: %v", err)
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(store, cfg)
	log.Printf("rpg companion server listening on %s backend=%s", addr, cfg.StorageBackend)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}

func newStore(cfg config.Config) (game.Store, error) {
	if cfg.StorageBackend == "postgres" {
		conn, err := db.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(conn), nil
	}
	return memory.New(), nil
}
