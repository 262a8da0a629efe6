package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/truthlens/factwave/src/api/webserver"
	"github.com/truthlens/factwave/src/config"
	"github.com/truthlens/factwave/src/data"
	"github.com/truthlens/factwave/src/verify/cache"
	"github.com/truthlens/factwave/src/verify/integrate"
	"github.com/truthlens/factwave/src/verify/orchestrator"
	"github.com/truthlens/factwave/src/verify/provider"
	"github.com/truthlens/factwave/src/verify/types"
	"github.com/truthlens/factwave/src/webclient"

	_ "github.com/truthlens/factwave/src/verify/provider/bigkinds"
	_ "github.com/truthlens/factwave/src/verify/provider/factiverse"
	_ "github.com/truthlens/factwave/src/verify/provider/googlefact"
)

func main() {
	_ = godotenv.Load()

	db := data.MustMySQL(getenvDefault("MYSQL_DSN", "factwave:factwave@tcp(localhost:3306)/factwave"))
	if err := data.LoadSettings(db); err != nil {
		log.Printf("failed to load settings: %v", err)
	}
	cfg := config.Load(db)

	var store cache.Store
	if cfg.CacheMode == "memory" {
		store = cache.NewMemory()
	} else {
		store = cache.NewRedis(data.MustRedis(cfg.RedisURL))
	}

	adapters := buildAdapters(cfg)
	if len(adapters) == 0 {
		log.Fatalf("no verification providers configured")
	}

	integrator := integrate.New(integrate.Config{
		DedupeSources:  cfg.DedupeSources,
		ClampTimeDecay: cfg.ClampTimeDecay,
	})

	// One orchestrator serves both single and batch verification so cache
	// and provider sessions are shared.
	orch := orchestrator.New(adapters, store, integrator, orchestrator.Config{
		MaxRetries:       cfg.MaxRetries,
		CacheTTL:         time.Duration(cfg.CacheTTLSeconds) * time.Second,
		BatchConcurrency: cfg.BatchConcurrency,
	})

	router := webserver.New(cfg, orch)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("factwave API listening on %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}

func buildAdapters(cfg config.Config) []provider.Adapter {
	web := webclient.New(time.Duration(cfg.HTTPTimeout)*time.Second, cfg.ProviderQPS)

	candidates := []struct {
		name    string
		apiKey  string
		baseURL string
	}{
		{types.SourceGoogle, cfg.GoogleAPIKey, cfg.GoogleBaseURL},
		{types.SourceFactiverse, cfg.FactiverseAPIKey, cfg.FactiverseBaseURL},
		{types.SourceBigKinds, cfg.BigKindsAPIKey, cfg.BigKindsBaseURL},
	}

	var adapters []provider.Adapter
	for _, c := range candidates {
		if c.apiKey == "" {
			log.Printf("provider %s not configured, skipping", c.name)
			continue
		}
		adapter, err := provider.New(c.name, provider.FactoryConfig{
			APIKey:  c.apiKey,
			BaseURL: c.baseURL,
			Web:     web,
		})
		if err != nil {
			log.Printf("provider %s: %v", c.name, err)
			continue
		}
		adapters = append(adapters, adapter)
	}
	return adapters
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
