package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyberhunt/internal/app"
	"cyberhunt/internal/config"
	"cyberhunt/internal/infra/memory"
	infraredis "cyberhunt/internal/infra/redis"
	"cyberhunt/internal/logging"
	"cyberhunt/internal/metrics"
	transport "cyberhunt/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the CyberHunt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = log.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	loader, closeLoader, err := newQuestionLoader(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	ttl := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var repo app.QuestionRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		repo = infraredis.NewQuestionRepository(redisClient, loader, cfg.Questions.Source, ttl)
		log.Info("caching questions in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		repo = memory.NewQuestionRepository(loader, ttl)
	}

	m := metrics.New()
	service := app.NewGameService(repo, log.Named("game"), m)
	gate, err := app.NewAdminGate(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Secret)
	if err != nil {
		return err
	}
	if cfg.Admin.Secret == "" {
		log.Warn("admin.secret not set, admin sessions end on restart")
	}

	// Views show the loading page until this finishes.
	go service.LoadQuestions(ctx)

	api := transport.NewServer(service, gate, m, log.Named("http"), transport.Options{
		RefreshInterval: config.TTLDuration(cfg.Leaderboard.RefreshInterval, 2*time.Second),
		BaseURL:         cfg.Server.BaseURL,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Bind, finalPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting cyberhunt", zap.String("addr", server.Addr), zap.String("source", cfg.Questions.Source))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
