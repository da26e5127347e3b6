package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/clipper"
	"ai-study-planner/internal/config"
	"ai-study-planner/internal/database"
	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/share"
	"ai-study-planner/internal/telegram"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.TelegramAllowUserIDs) == 0 {
		log.Println("Warning: TELEGRAM_ALLOW_USER_IDS is empty, the bot will ignore every user")
	}

	// 2. Initialize the SQLite database (metrics, and plans when store=sqlite)
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	kv, err := db.PlanKV(cfg.Store, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize plan store: %v", err)
	}

	metricsStore := metrics.NewStore(db.SQL)

	// 3. Initialize Services
	factory, provider, err := llm.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s provider: %v", cfg.Provider, err)
	}
	generator := planner.NewGenerator(factory, provider, cfg.Temperature)
	sessions := telegram.NewSessionRepository(kv, generator, time.Now, app.WithMetrics(metricsStore))
	signer := share.NewSigner(cfg.ShareSecret)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, telegram.Deps{
		Sessions: sessions,
		Clipper:  clipper.NewClipper(20 * time.Second),
		Usage:    metricsStore,
		Signer:   signer,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 5. Routes
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Post("/webhook", bot.HandleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/share/{token}", share.NewHandler(signer, sessions.SharedPlan))

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s (provider %s, store %s)", cfg.Port, provider.Name, cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
