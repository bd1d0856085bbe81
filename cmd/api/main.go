package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
	"github.com/NFT-Forge-sol/nft-forge/x/socket"
	"github.com/NFT-Forge-sol/nft-forge/x/util"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/plugin/opentelemetry/tracing"
)

type CustomHandler struct {
	slog.Handler
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {

	r.AddAttrs(slog.String("type", "app"))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(slog.String("traceID", span.SpanContext().TraceID().String()))
		r.AddAttrs(slog.String("spanID", span.SpanContext().SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

var (
	version      = "unknown"
	buildMachine = "unknown"
	buildTime    = "unknown"
	goVersion    = "unknown"
)

func main() {

	fmt.Fprint(os.Stderr, forgeBanner)

	handler := &CustomHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}
	slogger := slog.New(handler)
	slog.SetDefault(slogger)

	slog.Info(fmt.Sprintf("Forge relay %s starting...", version))

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	config := util.Config{}
	configPath := os.Getenv("FORGE_CONFIG")
	if configPath == "" {
		configPath = "/etc/forge/config.yaml"
	}

	err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	port := config.Server.Port
	if fromEnv := os.Getenv("PORT"); fromEnv != "" {
		port, err = strconv.Atoi(fromEnv)
		if err != nil {
			slog.Error("Invalid PORT environment variable", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, "forge-relay", version)
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware("relay", skipper))
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "forge",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	e.Use(middleware.Recover())

	if len(config.Forge.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: config.Forge.AllowedOrigins,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	db, err := gorm.Open(postgres.Open(config.Server.Dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	sqlDB, err := db.DB() // for pinging
	if err != nil {
		panic("failed to connect database")
	}
	defer sqlDB.Close()

	err = sqlDB.Ping()
	if err != nil {
		panic("failed to reach database")
	}

	err = db.Use(tracing.NewPlugin(
		tracing.WithDBName("postgres"),
	))
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	// Migrate the schema
	slog.Info("start migrate")
	db.AutoMigrate(
		&core.CandyMachine{},
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Server.RedisAddr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})
	err = rdb.Ping(context.Background()).Err()
	if err != nil {
		panic("failed to reach redis")
	}
	err = redisotel.InstrumentTracing(
		rdb,
		redisotel.WithAttributes(
			attribute.KeyValue{
				Key:   "db.name",
				Value: attribute.StringValue("redis"),
			},
		),
	)
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	mc := memcache.New(config.Server.MemcachedAddr)
	defer mc.Close()

	machineService := SetupMachineService(db, rdb, mc, config)
	machineHandler := SetupMachineHandler(db, rdb, mc, config)

	socketService := socket.NewService()
	socketHandler := SetupSocketHandler(socketService, db, rdb, mc, config)
	socketSubscriber := SetupSocketSubscriber(rdb, socketService, config)

	apiV1 := e.Group("/api/v1")

	// machines
	apiV1.POST("/machines", machineHandler.Create)
	apiV1.GET("/machines", machineHandler.GetAll)
	apiV1.GET("/machines/:id", machineHandler.Get)
	apiV1.PUT("/machines/:id", machineHandler.Update)
	apiV1.POST("/machines/:id/mint", machineHandler.Mint)
	apiV1.GET("/machines/creator/:address", machineHandler.GetByCreator)
	apiV1.PUT("/machines/:id/status", machineHandler.UpdateStatus)

	// socket
	apiV1.GET("/socket", socketHandler.Connect)

	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version":      version,
			"buildMachine": buildMachine,
			"buildTime":    buildTime,
			"goVersion":    goVersion,
			"gitHash":      util.GetGitHash(),
			"module":       util.GetVersion(),
		})
	})

	e.GET("/health", func(c echo.Context) (err error) {
		ctx := c.Request().Context()

		err = sqlDB.Ping()
		if err != nil {
			return c.String(http.StatusInternalServerError, "db error")
		}

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return c.String(http.StatusInternalServerError, "redis error")
		}

		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	var machineCountMetrics = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_candy_machines_count",
			Help: "candy machine records",
		},
	)
	prometheus.MustRegister(machineCountMetrics)

	var socketConnectionMetrics = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_socket_connections",
			Help: "open socket connections",
		},
	)
	prometheus.MustRegister(socketConnectionMetrics)

	go func() {
		for {
			time.Sleep(15 * time.Second)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

			count, err := machineService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count candy machines: %v", err))
				cancel()
				continue
			}
			machineCountMetrics.Set(float64(count))

			socketConnectionMetrics.Set(float64(socketHandler.CurrentConnectionCount()))
			cancel()
		}
	}()

	e.GET("/metrics", echoprometheus.NewHandler())

	socketSubscriber.Start(context.Background())
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(fmt.Sprintf("Failed to shutdown tracer provider: %v", err))
		}
	}
	return cleanup, nil
}
