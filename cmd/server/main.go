package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/otaviopl/jn-restaurant/internal/config"
	"github.com/otaviopl/jn-restaurant/internal/external"
	"github.com/otaviopl/jn-restaurant/internal/httpx"
	"github.com/otaviopl/jn-restaurant/internal/inventory"
	kafkax "github.com/otaviopl/jn-restaurant/internal/kafka"
	"github.com/otaviopl/jn-restaurant/internal/notify"
	"github.com/otaviopl/jn-restaurant/internal/orders"
	"github.com/otaviopl/jn-restaurant/internal/redisx"
	"github.com/otaviopl/jn-restaurant/internal/store"
	"github.com/otaviopl/jn-restaurant/internal/syncx"
)

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With("service", cfg.ServiceName)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisx.TTLExternalCache = cfg.ExternalCacheTTL

	// Redis (cache opcional dos fetches externos)
	rdb := redisx.New(cfg.RedisAddr)
	if rdb != nil {
		defer rdb.Close()
	}

	// Kafka (sink opcional de eventos)
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024)
		prod.Start(ctx)
	}

	// Planilha remota
	client := external.NewClient(
		cfg.ExternalInventoryURL, cfg.ExternalProductsURL, cfg.ExternalOrdersURL,
		cfg.ExternalAPIKey, cfg.ExternalTimeout, rdb, log)

	st := store.New(cfg.DataFile, log)
	coord := syncx.NewCoordinator(st, client,
		cfg.ExternalOrderUpdateURL, cfg.ExternalOrderDeleteURL, cfg.ExternalInventoryUpdateURL,
		cfg.ExternalAPIKey, cfg.ExternalTimeout, log)

	if err := st.Load(ctx, coord.BootstrapDocument); err != nil {
		log.Error("carregar documento", "err", err)
		os.Exit(1)
	}

	webhook := notify.NewWebhook(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeout)
	notifier := notify.New(webhook, prod, log)

	ledger := &inventory.Ledger{Store: st, Log: log}
	svc := orders.NewService(st, notifier, coord, log)

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Service: svc, Sync: coord, Log: log}).Register(router)
	(&httpx.InventoryHandler{Ledger: ledger, Sync: coord, Notifier: notifier, Store: st, Log: log}).Register(router)
	(&httpx.WebhookHandler{Webhook: webhook, Log: log}).Register(router)
	(&httpx.SyncHandler{Sync: coord, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP no ar", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("encerrando...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()
		cancel()
		prod.WaitClosed()
	}
}
