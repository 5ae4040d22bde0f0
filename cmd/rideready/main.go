package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/rideready/rideready/internal/config"
	"github.com/rideready/rideready/internal/infra/database"
	"github.com/rideready/rideready/internal/infra/repository"
	"github.com/rideready/rideready/internal/infra/storage"
	"github.com/rideready/rideready/internal/obs"
	"github.com/rideready/rideready/internal/present/rest"
	"github.com/rideready/rideready/internal/present/rest/middleware"
	"github.com/rideready/rideready/internal/service"
	"github.com/rideready/rideready/internal/usecase"
)

func main() {
	configPath := os.Getenv("RIDEREADY_CONFIG")
	if configPath == "" {
		configPath = "/etc/rideready/config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := obs.SetupTracing(context.Background(), conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(ctx)
		}()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = database.MigratePostgres(db)
	if err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	store, err := storage.NewLocalFS(conf.Server.MediaDir)
	if err != nil {
		slog.Error("failed to open media directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	domainConf := conf.Domain()
	signer := storage.NewURLSigner(
		[]byte(domainConf.TokenSecret),
		"https://"+domainConf.FQDN,
		time.Duration(domainConf.MediaURLTTLSeconds)*time.Second,
	)

	gearRepo := repository.NewGearRepository(db)
	riderRepo := repository.NewRiderRepository(db, mc)

	signal := service.NewSignalService(rdb)

	gearUC := usecase.NewGearUsecase(gearRepo, store, signer, signal)
	riderUC := usecase.NewRiderUsecase(riderRepo)

	auth := service.NewAuthService(&domainConf, riderUC)

	handler := rest.NewHandler(domainConf, gearUC, riderUC, signal)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(domainConf.FQDN))
	}
	e.Use(middleware.NewAuthMiddleware(auth, domainConf).IdentifyIdentity)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}
