package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"knowbase/internal/api"
	"knowbase/internal/config"
	"knowbase/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		cancel()
		log.Fatal(err)
	}
	if err := db.EnsureSchema(ctx, cfg.EmbedDim); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()
	db.Close()

	h := api.NewServer(cfg)
	log.Printf("knowbase api listening on %s domains=%v llm_providers=%q embed_providers=%q", cfg.APIAddr, cfg.Domains, cfg.LLMProviders, cfg.EmbedProviders)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
