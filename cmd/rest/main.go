package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medstudy-be/internal/bootstrap"
	"medstudy-be/internal/config"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/server"
	"medstudy-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing stays a no-op unless OTEL_ENABLED=true
	shutdownTracer := tracer.Init(ctx, cfg, sysLogger)
	defer shutdownTracer(context.Background())

	// 2. Initialize Storage
	backend, closeBackend, err := bootstrap.OpenBackend(ctx, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to open storage backend: %v", err)
	}
	defer closeBackend()

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(backend, cfg, sysLogger)
	defer container.Close()

	// 4. Start Background Services
	if err := container.StartBackground(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
