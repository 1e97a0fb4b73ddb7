package main

import (
	"context"
	"devEvents/internal/cache"
	"devEvents/internal/client/eventsapi"
	"devEvents/internal/config"
	"devEvents/internal/http-server/handlers/event/createBooking"
	"devEvents/internal/http-server/handlers/event/createEvent"
	"devEvents/internal/http-server/handlers/event/getAllEvents"
	"devEvents/internal/http-server/handlers/event/getEvent"
	"devEvents/internal/http-server/handlers/event/getSimilarEvents"
	"devEvents/internal/http-server/handlers/page/bookEvent"
	"devEvents/internal/http-server/handlers/page/eventDetails"
	"devEvents/internal/http-server/handlers/page/home"
	"devEvents/internal/http-server/middleware/deadline"
	"devEvents/internal/http-server/middleware/mwlogger"
	"devEvents/internal/http-server/middleware/ratelimit"
	"devEvents/internal/http-server/views"
	"devEvents/internal/lib/logger/handlers/slogpretty"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/media/s3store"
	"devEvents/internal/services/booking"
	"devEvents/internal/services/event"
	"devEvents/internal/storage/mongodb"
	"devEvents/internal/storage/postgres"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

type store interface {
	event.EventStore
	booking.BookingStore
	Close() error
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting dev events", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))
	log.Debug("Debug messages are enabled")

	storage, err := setupStorage(cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	images, err := s3store.New(&cfg.Media)
	if err != nil {
		log.Error("failed to init media store", sl.Err(err))
		os.Exit(1)
	}

	pageCache := setupCache(log, &cfg.Cache)

	pages, err := views.New()
	if err != nil {
		log.Error("failed to parse templates", sl.Err(err))
		os.Exit(1)
	}

	events := event.New(log, storage, images)
	bookings := booking.New(log, storage)

	api := eventsapi.New(eventsapi.Options{
		BaseURL:   cfg.HTTPServer.BaseURL,
		Cache:     pageCache,
		ListTTL:   cfg.Cache.ListTTL,
		DetailTTL: cfg.Cache.DetailTTL,
	})

	limiter := ratelimit.New(cfg.HTTPServer.RateLimit.RPS, cfg.HTTPServer.RateLimit.Burst)

	router := newRouter(log)

	router.Route("/api", func(r chi.Router) {
		r.Get("/events", getAllEvents.New(log, events))
		r.Get("/events/{slug}", getEvent.New(log, events))
		r.Get("/events/{slug}/similar", getSimilarEvents.New(log, events))

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware(log))

			r.With(deadline.Extend(log, cfg.HTTPServer.UploadTimeout)).
				Post("/events", createEvent.New(log, events, cfg.HTTPServer.MaxUploadSize))
			r.Post("/bookings", createBooking.New(log, bookings))
		})
	})

	router.Get("/", home.New(log, api, pages))
	router.Get("/events/{slug}", eventDetails.New(log, api, events, pages))
	router.With(limiter.Middleware(log)).Post("/events/{slug}/book", bookEvent.New(log, bookings))

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = pageCache.Close(); err != nil {
		log.Error("failed to close cache", sl.Err(err))
	}

	if err = storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("storage closed")
}

// newRouter applies the middleware shared by every route. Path segments
// reach the handlers untouched: no format-suffix middleware in this chain.
func newRouter(log *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)

	return router
}

func setupStorage(cfg *config.Config) (store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		// Connects on first use, so a missing MONGODB_URI surfaces per request.
		return mongodb.New(&cfg.Mongo), nil
	default:
		return postgres.InitDB(&cfg.Database)
	}
}

func setupCache(log *slog.Logger, cfg *config.Cache) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.NewMemoryCache()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
	if err != nil {
		log.Warn("redis unavailable, falling back to memory cache", sl.Err(err))
		return cache.NewMemoryCache()
	}

	return c
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
