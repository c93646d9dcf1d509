package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/weighttracker/internal/chart"
	"github.com/2beens/weighttracker/internal/config"
	"github.com/2beens/weighttracker/internal/db"
	"github.com/2beens/weighttracker/internal/health"
	"github.com/2beens/weighttracker/internal/impedance"
	"github.com/2beens/weighttracker/internal/measurements"
	"github.com/2beens/weighttracker/internal/middleware"
	"github.com/2beens/weighttracker/internal/telemetry/metrics"
	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/internal/users"
	"github.com/2beens/weighttracker/internal/web"
)

const serviceName = "weight-tracker"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	loc         *time.Location
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	usersRepo        *users.Repo
	measurementsRepo *measurements.Repo
	impedanceRepo    *impedance.Repo
	weightCharts     *chart.Service
	impedanceCharts  *chart.Service
	renderer         *web.Renderer

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (_ *Server, err error) {
	// resources opened so far are released if setup fails
	var opened closers
	defer func() {
		if err != nil {
			opened.closeAll()
		}
	}()

	loc, err := params.Config.Location()
	if err != nil {
		return nil, err
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}
	opened.add(dbPool.Close)

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if err := db.Migrate(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("weight_tracker", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0,
	})
	opened.add(func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName, rdb)
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}
	opened.add(otelShutdown)

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	s := &Server{
		config:      params.Config,
		loc:         loc,
		dbPool:      dbPool,
		redisClient: rdb,
		renderer:    renderer,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}
	s.setupServices(dbPool)

	return s, nil
}

type closers []func()

func (c *closers) add(closeFn func()) {
	*c = append(*c, closeFn)
}

// closeAll runs the close funcs in reverse order of registration.
func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func (s *Server) setupServices(conn db.Conn) {
	s.usersRepo = users.NewRepo(conn)
	s.measurementsRepo = measurements.NewRepo(conn, s.loc)
	s.impedanceRepo = impedance.NewRepo(conn, s.loc)

	s.weightCharts = chart.NewService(s.chartServiceParams(measurements.Kind, s.measurementsRepo))
	s.impedanceCharts = chart.NewService(s.chartServiceParams(impedance.Kind, s.impedanceRepo))
}

func (s *Server) chartServiceParams(kind string, source chart.ObservationSource) chart.ServiceParams {
	return chart.ServiceParams{
		Kind:           kind,
		Source:         source,
		Location:       s.loc,
		CacheSizeBytes: s.config.ChartCacheSizeBytes(),
		CacheTTL:       s.config.ChartCacheTTL(),
		MaxWindowDays:  s.config.ChartMaxWindowDays,
		MetricsManager: s.metricsManager,
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	// api
	api := r.PathPrefix("/api").Subrouter()

	usersHandler := users.NewHandler(s.usersRepo, s.weightCharts, s.impedanceCharts)
	api.HandleFunc("/users", usersHandler.HandleList).Methods("GET", "OPTIONS").Name("list-users")
	api.HandleFunc("/users", usersHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-user")
	api.HandleFunc("/users/{id}", usersHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
	api.HandleFunc("/users/{id}", usersHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-user")

	measurementsHandler := measurements.NewHandler(s.measurementsRepo, s.weightCharts, s.loc, s.metricsManager)
	api.HandleFunc("/measurements", measurementsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-measurements")
	api.HandleFunc("/measurements", measurementsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-measurement")
	api.HandleFunc("/measurements/{id}", measurementsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-measurement")

	impedanceHandler := impedance.NewHandler(s.impedanceRepo, s.impedanceCharts, s.metricsManager)
	api.HandleFunc("/impedances", impedanceHandler.HandleList).Methods("GET", "OPTIONS").Name("list-impedances")
	api.HandleFunc("/impedances", impedanceHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-impedance")
	api.HandleFunc("/impedances/{id}", impedanceHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-impedance")

	weightChartHandler := chart.NewHandler(s.weightCharts, s.usersRepo)
	impedanceChartHandler := chart.NewHandler(s.impedanceCharts, s.usersRepo)
	api.HandleFunc("/chart/{userID}", weightChartHandler.HandleGet).Methods("GET", "OPTIONS").Name("weight-chart")
	api.HandleFunc("/chart/{userID}/impedance", impedanceChartHandler.HandleGet).Methods("GET", "OPTIONS").Name("impedance-chart")

	api.Use(middleware.Cors(s.config.AllowedOrigins))
	api.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"api",
		s.config.WriteRateLimitPerMin,
		s.metricsManager,
	))

	// operational
	healthHandler := health.NewHandler(s.dbPool, s.redisClient)
	r.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET").Name("health")

	// html views
	webHandler := web.NewHandler(web.HandlerParams{
		Renderer:        s.renderer,
		Users:           s.usersRepo,
		WeightCharts:    s.weightCharts,
		ImpedanceCharts: s.impedanceCharts,
		Measurements:    s.measurementsRepo,
		Location:        s.loc,
	})
	r.PathPrefix("/static/").Handler(otelhttp.NewHandler(
		http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS()))),
		"static",
	)).Methods("GET").Name("static")
	r.HandleFunc("/", webHandler.HandleIndex).Methods("GET").Name("index")
	r.HandleFunc("/chart/{userID}", webHandler.HandleChart).Methods("GET").Name("chart-page")
	r.HandleFunc("/table/{userID}", webHandler.HandleTable).Methods("GET").Name("table-page")

	r.NotFoundHandler = middleware.LogRequest()(http.HandlerFunc(webHandler.HandleNotFound))

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown stops accepting requests, waits up to 15s for the in-flight
// ones, then releases the otel exporter, redis and the db pool.
func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			multierr.AppendInto(&err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		} else {
			log.Warnln("server shut down")
		}
	}
	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			multierr.AppendInto(&err, fmt.Errorf("shutdown metrics server: %w", shutdownErr))
		} else {
			log.Warnln("metrics server shut down")
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			multierr.AppendInto(&err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
