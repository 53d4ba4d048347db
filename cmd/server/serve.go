package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/colocetudiant/internal/ai"
	"github.com/iliyamo/colocetudiant/internal/config"
	"github.com/iliyamo/colocetudiant/internal/database"
	"github.com/iliyamo/colocetudiant/internal/handler"
	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/queue"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/router"
	"github.com/iliyamo/colocetudiant/internal/service"
	"github.com/iliyamo/colocetudiant/internal/session"
	"github.com/iliyamo/colocetudiant/internal/ws"
)

var withConsumer bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), withConsumer)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withConsumer, "with-consumer", false, "also run the event consumer in-process")
}

func runServe(ctx context.Context, consumer bool) error {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable: in-memory sessions, no cache, no rate limiting", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	var store session.Store = session.NewMemoryStore()
	if rdb != nil {
		store = session.NewRedisStore(rdb)
	}

	var gen ai.Generator
	if cfg.AIKey != "" {
		g, err := ai.NewGenAIGenerator(ctx, cfg.AIKey, cfg.AIModel)
		if err != nil {
			logger.Warn("AI disabled", zap.Error(err))
		} else {
			gen = g
		}
	}

	var pub service.Publisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub = service.NewAMQPPublisher(cfg.RabbitURL, logger)
	}

	users := repository.NewUserRepo(db)
	sessions := session.NewManager(store, users, cfg.SessionTTL, logger)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	hub := ws.NewHub(logger)
	defer hub.Close()

	e := newEcho()
	router.Register(e, router.Handlers{
		Auth: handler.NewAuthHandler(cfg, users, sessions, logger),
		Annonces: &handler.AnnonceHandler{
			Annonces:  repository.NewAnnonceRepo(db),
			AI:        ai.NewClient(gen, logger),
			Cache:     cache,
			Publisher: pub,
			Log:       logger,
		},
		Profile:  &handler.ProfileHandler{Users: users, Sessions: sessions, Log: logger},
		Messages: &handler.MessageHandler{Messages: repository.NewMessageRepo(db), Hub: hub, Publisher: pub, Log: logger},
		Household: &handler.HouseholdHandler{
			Tasks:    repository.NewTaskRepo(db),
			Expenses: repository.NewExpenseRepo(db),
			Log:      logger,
		},
	}, router.Options{
		Auth:      middleware.Auth{Secret: cfg.JWTSecret, Sessions: sessions, Log: logger},
		Cache:     cache,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Log:       logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if consumer && cfg.RabbitURL != "" {
		g.Go(func() error {
			c := &queue.Consumer{URL: cfg.RabbitURL, LogPath: cfg.EventsLog, Log: logger}
			return c.Run(gctx)
		})
	}
	return g.Wait()
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("12M")) // photos are inline data URLs
	e.Use(middleware.RequestLogger(logger))
	return e
}
