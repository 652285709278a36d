package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"ridepool/internal/retention"
	"ridepool/pkg/api"
	"ridepool/pkg/banner"
	"ridepool/pkg/config"
	"ridepool/pkg/lifecycle"
	"ridepool/pkg/logger"
	"ridepool/pkg/security"
	"ridepool/pkg/shutdown"
	"ridepool/pkg/store"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithLevel(cfg.Logging.Level)

	// flags win over config/env when provided by the user
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}

	if err := store.Open(dbPath, cfg.Storage.CacheSize.Int64()); err != nil {
		log.Fatalf("failed to open pebble at %s: %v", dbPath, err)
	}
	defer func() { _ = store.Close() }()

	sweeper := lifecycle.NewSweeper(cfg.Retention.Window.Duration())

	ctx, stop := shutdown.SetupSignalHandler(context.Background())
	defer stop()

	cancelRetention, err := retention.Start(ctx, cfg.Retention, sweeper)
	if err != nil {
		log.Fatalf("failed to start retention scheduler: %v", err)
	}
	defer cancelRetention()

	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(sweeper))
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))

	secCfg := security.SecConfig{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		RPS:            cfg.Security.RateLimit.RPS,
		Burst:          cfg.Security.RateLimit.Burst,
	}
	wrapped := security.Middleware(secCfg)(mux)

	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	banner.Print(cfg, addr, dbPath, strings.Join(srcs, ", "), verStr)

	srv := &http.Server{Addr: addr, Handler: wrapped}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	var errServe error
	if cert != "" && key != "" {
		errServe = srv.ListenAndServeTLS(cert, key)
	} else {
		errServe = srv.ListenAndServe()
	}
	if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		log.Fatal(errServe)
	}
	logger.Info("server_stopped")
}
