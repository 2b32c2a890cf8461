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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/config"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/appointment"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/dashboard"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/healthtrack"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/identity"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/medicine"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/payment"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/slot"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/db"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/middleware"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/poller"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/sessionbus"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/websocket"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeSchedule   = "@every 10m"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.New(backend.Options{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout}, logger)

	// Session store
	var store identity.SessionStore = identity.NewMemoryStore()
	pgCheck := db.Check{Name: "postgres"}
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, db.PoolOptions{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		store = identity.NewPGStore(pool)
		pgCheck.Pinger = pool
		logger.Info().Msg("sessions stored in postgres")
	}

	// Session event bus
	var bus sessionbus.Bus = sessionbus.NewLocalBus()
	redisCheck := db.Check{Name: "redis"}
	if cfg.RedisURL != "" {
		rdb, err := sessionbus.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		bus = sessionbus.NewRedisBus(rdb, sessionbus.DefaultChannel, logger)
		redisCheck.Pinger = sessionbus.Pinger{Client: rdb}
		logger.Info().Msg("session events relayed through redis")
	}
	defer bus.Close()

	hub := websocket.NewHub(logger)
	app := buildApp(cfg, client, store, bus, hub, logger)
	app.echo.GET("/health", db.HealthHandler(pgCheck, redisCheck))

	hub.OnSession(app.poller)
	purger, err := schedulePurge(app.identity, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bus.Run(gctx) })
	g.Go(func() error { return app.poller.Run(gctx) })
	g.Go(func() error {
		purger.Start()
		<-gctx.Done()
		<-purger.Stop().Done()
		return nil
	})
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.BackendURL).Msg("starting server")
		if err := app.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.echo.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

type app struct {
	echo     *echo.Echo
	identity *identity.Service
	dialogs  *appointment.DialogRegistry
	poller   *poller.Poller
}

// buildApp wires services and routes. It performs no I/O so tests can build
// the full route table against fakes.
func buildApp(cfg *config.Config, client *backend.Client, store identity.SessionStore, bus sessionbus.Bus, hub *websocket.Hub, logger zerolog.Logger) *app {
	identitySvc := identity.NewService(client, store, bus, cfg.SessionTTL, logger)

	apptSvc := appointment.NewService(client)
	dialogs := appointment.NewDialogRegistry(client, approvalRefresh(hub), logger)
	healthSvc := healthtrack.NewService(client)

	bus.Subscribe(sessionbus.ToHub(hub))
	bus.Subscribe(sessionbus.OnLogout(dialogs.Close))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader, auth.HeaderName},
		AllowCredentials: true,
	}))
	e.Use(auth.SessionMiddleware(identitySvc))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	rate := middleware.RateLimit(middleware.DefaultRateLimitConfig())

	identityHandler := identity.NewHandler(identitySvc, cfg.CookieSecure)
	identityHandler.RegisterPublicRoutes(e.Group("/auth", rate))

	apiV1 := e.Group("/api/v1", rate)
	identityHandler.RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboard.NewService(apptSvc, healthSvc)).RegisterRoutes(apiV1)
	appointment.NewHandler(apptSvc, dialogs).RegisterRoutes(apiV1)
	healthtrack.NewHandler(healthSvc).RegisterRoutes(apiV1)
	medicine.NewHandler(medicine.NewService(client)).RegisterRoutes(apiV1)
	slot.NewHandler(slot.NewService(client, logger)).RegisterRoutes(apiV1)
	payment.NewHandler(payment.NewService(client, logger)).RegisterRoutes(apiV1)
	websocket.NewWebSocketHandler(hub, cfg.CORSOrigins, logger).RegisterRoutes(apiV1)

	return &app{
		echo:     e,
		identity: identitySvc,
		dialogs:  dialogs,
		poller:   poller.New(pollPlans(cfg, apptSvc), hub, logger),
	}
}

// appointmentLister is the part of the appointment service the poller uses.
type appointmentLister interface {
	ListAll(ctx context.Context, token string, f appointment.Filter) ([]appointment.Record, error)
	ListForPatient(ctx context.Context, token string, patientID int64) ([]appointment.Record, error)
}

// pollPlans re-fetches the admin list and the patient's own list. Doctors
// refresh on navigation only.
func pollPlans(cfg *config.Config, appts appointmentLister) map[auth.Role]poller.Plan {
	return map[auth.Role]poller.Plan{
		auth.RoleAdmin: {
			Interval: cfg.AdminPollInterval,
			Event:    "appointments.refresh",
			Fetch: func(ctx context.Context, sess *auth.Session) (any, error) {
				return appts.ListAll(ctx, sess.Token, appointment.Filter{})
			},
		},
		auth.RolePatient: {
			Interval: cfg.PatientPollInterval,
			Event:    "appointments.mine",
			Fetch: func(ctx context.Context, sess *auth.Session) (any, error) {
				return appts.ListForPatient(ctx, sess.Token, sess.User.ID)
			},
		},
	}
}

// approvalRefresh tells every admin and the affected patient that an
// appointment changed so their lists re-fetch without waiting for a tick.
func approvalRefresh(hub *websocket.Hub) appointment.RefreshFunc {
	return func(_ context.Context, approved appointment.Record) {
		hub.Broadcast(websocket.TopicAppointments,
			websocket.NewEvent("appointment.approved", websocket.TopicAppointments, approved))
		if approved.PatientID != 0 {
			topic := websocket.PatientTopic(approved.PatientID)
			hub.Broadcast(topic, websocket.NewEvent("appointment.approved", topic, approved))
		}
		if approved.DoctorID != nil {
			topic := websocket.DoctorTopic(*approved.DoctorID)
			hub.Broadcast(topic, websocket.NewEvent("appointment.assigned", topic, approved))
		}
	}
}

func schedulePurge(svc *identity.Service, logger zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(purgeSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := svc.PurgeExpired(ctx); err != nil {
			logger.Warn().Err(err).Msg("purge expired sessions")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session purge: %w", err)
	}
	return c, nil
}
