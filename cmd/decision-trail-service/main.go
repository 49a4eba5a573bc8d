package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/gridmarket/negotiator/internal/config"
	"github.com/gridmarket/negotiator/internal/httpserver"
	"github.com/gridmarket/negotiator/internal/trail"
)

// decision-trail-service hosts the diagnostic record of the negotiation
// engine: every clamp, negotiation decision and claim-acceptance decision the
// engine records. The engine itself runs in-process with the transport
// collaborator and hands decisions to the trail; this service persists them
// and serves them back to operators.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var store trail.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("ping db: %v", err)
		}
		store = trail.NewPGStore(db)
	} else {
		log.Printf("no database configured, using in-memory decision store")
		store = trail.NewMemoryStore()
	}

	var producer trail.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := trail.NewKafkaProducer(trail.KafkaProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		producer = p
	}

	var archiver trail.Archiver
	if cfg.S3Bucket != "" {
		a, err := trail.NewS3Archiver(context.Background(), cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("s3 archiver: %v", err)
		}
		archiver = a
	}

	recorder := trail.NewTrail(trail.TrailConfig{
		Store:    store,
		Producer: producer,
		Archiver: archiver,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := recorder.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("trail recorder: %v", err)
		}
	}()

	secret := cfg.JWTSecret
	if cfg.AuthOff {
		secret = ""
	}
	server := httpserver.New(store, recorder, nil)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(secret),
	}

	go func() {
		log.Printf("decision trail listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(httpServer, cancel)
}

func waitForShutdown(srv *http.Server, cancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()
	ctx, cancelTimeout := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelTimeout()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown: %v", err)
	}
}
