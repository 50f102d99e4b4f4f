package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vision-overlay/config"
	httpapi "vision-overlay/internal/api/http"
	"vision-overlay/internal/api/telegram"
	app "vision-overlay/internal/application"
	"vision-overlay/internal/container"
	"vision-overlay/internal/domain/port"
	"vision-overlay/internal/infrastructure/describe"
	"vision-overlay/internal/infrastructure/detection"
	"vision-overlay/internal/infrastructure/logging"
	"vision-overlay/internal/infrastructure/storage"
	"vision-overlay/internal/infrastructure/vision"
	"vision-overlay/internal/overlay"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "vision-overlay",
		Short:        "Разметка снимков ответами сервиса детекции",
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "путь к YAML-конфигурации")

	root.AddCommand(newServeCommand(&configPath), newRenderCommand(&configPath))
	return root
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и Telegram-бота",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, loadConfig(*configPath))
		},
	}
}

func loadConfig(path string) *config.Config {
	if path == config.DefaultPath {
		return config.New()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v, using defaults\n", path, err)
		return config.New()
	}
	return cfg
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Sync(logger)

	logger.Info("starting vision-overlay",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	cache, closeCache := newCache(ctx, cfg, logger)
	defer closeCache()

	c := newContainer(cfg, cache, logger)

	router := httpapi.NewRouter(
		httpapi.NewHandler(c.InspectionService, c.Detector, httpapi.Options{
			MaxUpload:    cfg.Server.MaxUpload,
			DefaultLabel: cfg.Overlay.DefaultLabel,
			Build:        httpapi.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		}, logger),
		cfg.Server.Mode, logger)

	var bot *telegram.Bot
	if cfg.Telegram.Token != "" {
		if bot, err = telegram.NewBot(cfg.Telegram.Token, c); err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
	} else {
		logger.Warn("TELEGRAM_TOKEN is empty, bot disabled")
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if bot != nil {
		g.Go(func() error {
			logger.Info("bot is running")
			return bot.Run(ctx)
		})
	}

	return g.Wait()
}

// newCache подключает Redis, а при его недоступности переходит на кэш в памяти
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.ResultCache, func()) {
	memory := storage.NewMemoryResultCache(cfg.Redis.TTL)
	if !cfg.Redis.Enabled {
		return memory, func() {}
	}

	redisCache := storage.NewRedisResultCache(storage.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis connection failed, using in-memory cache", zap.Error(err))
		_ = redisCache.Close()
		return memory, func() {}
	}

	logger.Info("redis connected successfully", zap.String("addr", cfg.Redis.Addr))
	return redisCache, func() { _ = redisCache.Close() }
}

func newContainer(cfg *config.Config, cache port.ResultCache, logger *zap.Logger) *container.Container {
	deps := app.InspectionDeps{
		Decoder:    vision.NewDecoder(),
		Compositor: vision.NewCompositor(cfg.Overlay.JPEGQuality),
		Cache:      cache,
		Describer:  describe.NewTextDescriber(0),
	}
	if cfg.Detector.URL != "" {
		deps.Detector = detection.NewClient(detection.Options{
			URL:       cfg.Detector.URL,
			FormField: cfg.Detector.FormField,
			Timeout:   cfg.Detector.Timeout,
		})
	}

	return container.New(storage.NewMemoryUserRepository(), deps, renderOptions(cfg), logger)
}

func renderOptions(cfg *config.Config) app.RenderOptions {
	style := overlay.DefaultStyle()
	style.MinBoxPixels = cfg.Overlay.MinBoxPixels
	style.FillAlpha = cfg.Overlay.FillAlpha

	return app.RenderOptions{
		DisplayMaxSide:   cfg.Overlay.DisplayMaxSide,
		DevicePixelRatio: cfg.Overlay.DevicePixelRatio,
		MinScore:         cfg.Detector.MinScore,
		FrameInterval:    cfg.Overlay.FrameInterval,
		RenderTimeout:    cfg.Overlay.RenderTimeout,
		Style:            style,
	}
}
