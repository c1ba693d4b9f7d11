package main

import (
	"context"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/config"
	"github.com/md-rashed-zaman/meetingtime/libs/grpcx"
	"github.com/md-rashed-zaman/meetingtime/libs/httpx"
	otelx "github.com/md-rashed-zaman/meetingtime/libs/otel"
	"github.com/md-rashed-zaman/meetingtime/libs/runtime"
	"github.com/md-rashed-zaman/meetingtime/services/calendar-service/internal/handlers"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "calendar-service")
	port, err := config.Port("PORT", "8091")
	if err != nil {
		panic(err)
	}
	maxItems, err := config.Int("SEQUENCE_MAX_ITEMS", 1000)
	if err != nil {
		panic(err)
	}
	maxSpanDays, err := config.Int("CALENDAR_MAX_SPAN_DAYS", 3660)
	if err != nil {
		panic(err)
	}
	rateLimit, err := config.Int("RATE_LIMIT_PER_MINUTE", 600)
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

	var checks []runtime.ReadyCheck
	if addr := config.String("SCHEDULING_GRPC_ADDR", ""); addr != "" {
		probe, err := grpcx.NewHealthProbe(addr, config.String("SCHEDULING_GRPC_SERVICE", "scheduling-service"))
		if err != nil {
			logger.Error("scheduling health probe setup failed", "err", err, "addr", addr)
			panic(err)
		}
		defer func() { _ = probe.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "scheduling", Check: probe.Check})
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.New(logger, handlers.Options{
		MaxSequenceItems: maxItems,
		MaxSpanDays:      maxSpanDays,
	}).Register(mux)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicyFromOrigins(config.List("CORS_ALLOWED_ORIGINS"))),
		httpx.NewRateLimiter(rateLimit, time.Minute).Middleware(),
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(5*time.Second),
	)
	handler = otelhttp.NewHandler(handler, "calendar")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runtime.ServeHTTP(ctx, logger, srv)
}
