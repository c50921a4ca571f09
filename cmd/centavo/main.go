package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"centavo/internal/auth"
	"centavo/internal/cache"
	"centavo/internal/cli"
	"centavo/internal/config"
	apphttp "centavo/internal/http"
	"centavo/internal/kv"
	"centavo/internal/log"
	"centavo/internal/services"
	"centavo/internal/storage"
	"centavo/internal/telegram"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheSweepInterval = time.Minute
	defaultWebhookPath = "/telegram/webhook"
)

func main() {
	cfg, logger := cli.Bootstrap(config.RoleAPI, log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Centavo stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Centavo stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache))

	codes, err := newLinkStore(ctx, cfg, caches)
	if err != nil {
		return err
	}
	defer codes.Close()

	publisher, closePublisher := cli.NewPublisher(cfg, logger)
	defer closePublisher()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	linker := services.NewLinker(codes, repo, cfg.LinkCodeTTL, logger)
	users := services.NewUserService(repo, tokens, linker, cfg.DefaultCurrency, logger)
	categories := services.NewCategoryService(repo, logger)
	transactions := services.NewTransactionService(repo, repo, repo, publisher, logger)
	recurring := services.NewRecurringService(repo, repo, repo, transactions, logger)
	summary := services.NewSummaryService(repo, repo)

	httpCfg := apphttp.Config{
		Addr:               ":" + cfg.Port,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}

	var (
		bot    *telegram.Bot
		botAPI *tgbotapi.BotAPI
	)
	if cfg.TelegramBotToken != "" {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("connect telegram bot: %w", err)
		}
		bot = telegram.New(botAPI, telegram.Services{
			Users:        users,
			Categories:   categories,
			Transactions: transactions,
			Summary:      summary,
		}, logger)
		caches.Register(bot.Pending())

		if cfg.TelegramWebhookURL != "" {
			httpCfg.WebhookPath = webhookPath(cfg.TelegramWebhookURL)
			httpCfg.Webhook = bot.WebhookHandler(cfg.TelegramWebhookSecret)
			if err := telegram.RegisterWebhook(botAPI, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret); err != nil {
				return err
			}
			logger.Info("Telegram webhook registered", "path", httpCfg.WebhookPath)
		} else if err := telegram.DeleteWebhook(botAPI); err != nil {
			logger.Warn("Failed to clear Telegram webhook", log.FieldError, err)
		}
		logger.Info("Telegram bot authorized", "username", botAPI.Self.UserName)
	} else {
		logger.Info("Telegram bot disabled - no TELEGRAM_BOT_TOKEN provided")
	}

	srv, err := apphttp.NewServer(httpCfg, apphttp.Services{
		Users:        users,
		Categories:   categories,
		Transactions: transactions,
		Recurring:    recurring,
		Summary:      summary,
	}, logger)
	if err != nil {
		return fmt.Errorf("create http server: %w", err)
	}
	caches.Register(srv.RateLimiter())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		caches.Run(gctx, cacheSweepInterval)
		return nil
	})

	if bot != nil && cfg.TelegramWebhookURL == "" {
		g.Go(func() error {
			return bot.Run(gctx, botAPI)
		})
	}

	return g.Wait()
}

// newLinkStore picks the link-code store. The in-memory store is swept by
// caches.
func newLinkStore(ctx context.Context, cfg *config.Config, caches *cache.Manager) (kv.Store, error) {
	if cfg.LinkStore == "redis" {
		store, err := kv.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return store, nil
	}
	store := kv.NewMemory()
	caches.Register(store.Cache())
	return store, nil
}

func webhookPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return defaultWebhookPath
	}
	return u.Path
}
