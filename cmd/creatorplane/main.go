package main

import (
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"creatorplane/pkg/authz"
	"creatorplane/pkg/config"
	"creatorplane/pkg/db"
	"creatorplane/pkg/events"
	"creatorplane/pkg/featureflags"
	"creatorplane/pkg/gen"
	"creatorplane/pkg/hashistack/secretmanager"
	"creatorplane/pkg/hashistack/servicediscover"
	"creatorplane/pkg/health"
	"creatorplane/pkg/logger"
	"creatorplane/pkg/minio"
	"creatorplane/pkg/otelcol"
	"creatorplane/pkg/otelcol/exporters"
	"creatorplane/pkg/profiling"
	"creatorplane/pkg/redis"
	"creatorplane/pkg/sequence"
	"creatorplane/pkg/server"
	"creatorplane/pkg/task"
	"creatorplane/pkg/workflow"
	"creatorplane/services/campaign"
	"creatorplane/services/slot"
	"creatorplane/services/submission"
	"creatorplane/services/video"
)

func main() {
	configModule := config.Module
	if os.Getenv("REMOTE_CONFIG_ADDR") != "" {
		configModule = config.RemoteModule
	}

	opts := []fx.Option{
		secretmanager.Module,
		configModule,
		logger.Module,
		db.Module,
		fx.Invoke(
			db.RegisterConnectionPool,
			db.Otel,
			db.Metric,
		),
		redis.Module,
		sequence.Module,
		task.Client,
		minio.Client,
		authz.Module,
		featureflags.Module,
		events.Module,
		workflow.ProvideClient,
		servicediscover.Module,
		profiling.Module,
		gen.Module,
		fx.Provide(
			provideTracerProvider,
			provideMeterProvider,
		),
		server.ProvideHTTPServer,
		server.ProvideGRPCServer,
		health.Module,
		campaign.Module,
		campaign.Routes,
		slot.Module,
		slot.Routes,
		video.Module,
		video.Routes,
		submission.Module,
		submission.Routes,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideTracerProvider(cfg *config.Config) (trace.TracerProvider, error) {
	if cfg.Otel.Addr == "" {
		return otel.GetTracerProvider(), nil
	}

	var (
		exporter *otlptrace.Exporter
		err      error
	)
	if strings.HasPrefix(cfg.Otel.Addr, "http://") {
		exporter, err = exporters.ProvideHttp(cfg)
	} else {
		exporter, err = exporters.ProvideGrpc(cfg)
	}
	if err != nil {
		return nil, err
	}

	tp := otelcol.ProvideTrace(exporter)
	otel.SetTracerProvider(tp)
	return tp, nil
}

func provideMeterProvider() metric.MeterProvider {
	return otel.GetMeterProvider()
}

