package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docqa-be/internal/bootstrap"
	"docqa-be/internal/config"
	"docqa-be/internal/server"
	"docqa-be/internal/tracer"
	"docqa-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Tracer, a no-op unless OTEL_ENABLED is set
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		pool := database.DefaultPoolConfig()
		pool.MaxIdleConns = cfg.Database.MaxIdleConns
		pool.MaxOpenConns = cfg.Database.MaxOpenConns

		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection, pool, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if container.CacheInvalidation != nil {
		if err := container.CacheInvalidation.Start(ctx); err != nil {
			log.Printf("Background Cache Invalidation Error: %v", err)
		}
	}

	// answer what a crashed run left behind, then keep sweeping
	if n, err := container.OrphanSweeper.Sweep(ctx, cfg.Rag.OrphanGrace); err != nil {
		log.Printf("Startup orphan sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("Startup orphan sweep answered %d questions", n)
	}
	go container.OrphanSweeper.Run(ctx, cfg.Rag.OrphanSweepEvery, cfg.Rag.OrphanGrace)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
