package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundpal/internal/ai"
	"fundpal/internal/allocation"
	"fundpal/internal/config"
	"fundpal/internal/dialogue"
	"fundpal/internal/logger"
	"fundpal/internal/orchestrator"
	"fundpal/internal/planner"
	"fundpal/internal/portfolio"
	"fundpal/internal/quotes"
	"fundpal/internal/safety"
	"fundpal/internal/scheduler"
	"fundpal/internal/store"
	"fundpal/internal/telegram"
)

func main() {
	log.Println("[INFO] FundPal starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	logger.Setup(cfg.Log.Dir, cfg.Log.Level)

	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	// Quotes: Yahoo behind a short-lived cache.
	ttl, err := time.ParseDuration(cfg.Quotes.CacheTTL)
	if err != nil {
		log.Printf("[WARN] bad quotes cache_ttl %q, using 5m", cfg.Quotes.CacheTTL)
		ttl = 5 * time.Minute
	}
	yahoo := quotes.NewYahooProvider(cfg.Quotes.BaseURL, cfg.Proxy)
	provider, err := quotes.NewCachedProvider(yahoo, ttl)
	if err != nil {
		log.Fatalf("[FATAL] init quote cache: %v", err)
	}
	defer provider.Close()

	catalog, err := allocation.LoadCatalog(cfg.Funds.CatalogPath)
	if err != nil {
		log.Printf("[WARN] load fund catalog: %v, using built-in catalog", err)
		catalog = allocation.DefaultCatalog()
	}
	engine := allocation.NewEngine(catalog, provider)

	gemini := ai.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	pl := planner.New()

	orch := orchestrator.New(st, gemini, pl, dialogue.NewController(),
		engine, gemini, safety.NewGate(st), portfolio.NewService(st, provider))

	tg := telegram.NewClient(cfg.Telegram.BotToken)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(st, pl, tg)
	if err := sched.Register(cfg.Schedule.DigestCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go tg.Listen(ctx, func(userID, text string) string {
		reply, err := orch.Handle(userID, text)
		if err != nil {
			log.Printf("[ERROR] turn failed for %s: %v", userID, err)
			return "Something went wrong on my side. Your message was not saved, please try again."
		}
		return telegram.RenderReply(reply.Text, reply.Cards)
	})

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily digest now")
		go sched.RunDigestNow()
	}

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("[INFO] shutting down")
}
