package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/config"
	"github.com/md-rashed-zaman/meetingtime/libs/db"
	"github.com/md-rashed-zaman/meetingtime/libs/grpcx"
	"github.com/md-rashed-zaman/meetingtime/libs/httpx"
	"github.com/md-rashed-zaman/meetingtime/libs/kafkax"
	otelx "github.com/md-rashed-zaman/meetingtime/libs/otel"
	"github.com/md-rashed-zaman/meetingtime/libs/runtime"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/consumer"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/handlers"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/planner"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/proposals"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/storage"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8092")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9092")
	if err != nil {
		panic(err)
	}
	rateLimit, err := config.Int("RATE_LIMIT_PER_MINUTE", 600)
	if err != nil {
		panic(err)
	}
	redisDB, err := config.IntAtLeast("REDIS_DB", 0, 0)
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var pool *db.Pool
	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err = db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
	}

	table, err := loadZones(ctx, logger, pool)
	if err != nil {
		logger.Error("zone table load failed", "err", err)
		panic(err)
	}
	plan := planner.New(table)

	checks := []runtime.ReadyCheck{
		{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	}
	if pool != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}

	var rateLimitMW httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl:scheduling"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", rateLimit, "redis_addr", addr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", rateLimit)
	}

	if brokers := kafkax.SplitBrokers(config.String("KAFKA_BROKERS", "")); len(brokers) > 0 {
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Balancer: &kafka.Hash{},
		})
		defer func() { _ = writer.Close() }()

		var inbox consumer.Inbox
		if pool != nil {
			inbox = storage.NewInboxRepository(pool)
		}
		proposer := proposals.NewHandler(logger, plan, writer)
		c := consumer.New(logger, inbox, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topic:   config.String("KAFKA_TOPIC_SLOT_REQUESTED", proposals.TopicRequested),
		}, proposer.Handle)
		go c.Run(ctx)
		logger.Info("slot request consumer started", "brokers", brokers, "dedupe", inbox != nil)
	} else {
		logger.Warn("slot request consumer disabled (no kafka brokers configured)")
	}

	grpcServer := grpcx.NewServer(logger)
	if err := grpcServer.ListenAndServe(ctx, logger, ":"+grpcPort); err != nil {
		logger.Error("grpc listen failed", "err", err)
		panic(err)
	}
	grpcServer.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcServer.Health.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.New(logger, plan).Register(mux)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicyFromOrigins(config.List("CORS_ALLOWED_ORIGINS"))),
		rateLimitMW,
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(5*time.Second),
	)
	handler = otelhttp.NewHandler(handler, "scheduling")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runtime.ServeHTTP(ctx, logger, srv)
}

// loadZones prefers the database table, then ZONES_FILE, then the built-in set.
func loadZones(ctx context.Context, logger *slog.Logger, pool *db.Pool) (*zones.Table, error) {
	if pool != nil {
		table, err := storage.NewZoneRepository(pool).LoadTable(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("zone table loaded", "source", "database", "zones", table.Len())
		return table, nil
	}
	if path := config.String("ZONES_FILE", ""); path != "" {
		table, err := zones.LoadYAMLFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("zone table loaded", "source", path, "zones", table.Len())
		return table, nil
	}
	table := zones.Standard()
	logger.Info("zone table loaded", "source", "builtin", "zones", table.Len())
	return table, nil
}
