package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/joelkehle/costcoach/internal/advisor"
	"github.com/joelkehle/costcoach/internal/httpapi"
	"github.com/joelkehle/costcoach/internal/session"
)

func main() {
	var (
		addr   = flag.String("addr", ":8084", "Listen address")
		dbPath = flag.String("db", "costcoach.db", "SQLite database path (empty: in-memory sessions only)")
		chrome = flag.String("chrome", "", "Chrome/Chromium binary for PDF export (default: auto-detect)")
	)
	flag.Parse()

	// Best effort: a missing .env is the normal production case.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shutdownTracing, err := setupTracing(ctx)
	if err != nil {
		log.Fatalf("configure tracing: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			if err := shutdownTracing(shutCtx); err != nil {
				log.Printf("warning: tracing shutdown: %v", err)
			}
		}()
	}

	store, err := openStore(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer store.Close()

	var coach advisor.Coach
	if c, err := advisor.NewAnthropicCoachFromEnv(); err != nil {
		log.Printf("LLM coach disabled: %v", err)
	} else {
		coach = c
		log.Printf("LLM coach enabled")
	}

	handler := httpapi.NewServer(httpapi.Config{
		Store: store,
		Coach: coach,
		PDF:   httpapi.NewPDFRenderer(*chrome),
	})

	srv := &http.Server{Addr: *addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			srv.Close()
		}
	}()

	log.Printf("costcoach listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// openStore picks Postgres when COSTCOACH_DATABASE_URL is set, SQLite when a
// path is given, and plain memory otherwise. Every store runs its own TTL
// sweeper until the context ends.
func openStore(ctx context.Context, dbPath string) (session.Store, error) {
	cfg := session.Config{}
	if dbURL := strings.TrimSpace(os.Getenv("COSTCOACH_DATABASE_URL")); dbURL != "" {
		store, err := session.NewPostgresStore(ctx, dbURL, cfg)
		if err != nil {
			return nil, err
		}
		store.StartSweeper(ctx)
		log.Printf("sessions stored in Postgres")
		return store, nil
	}
	if dbPath != "" {
		store, err := session.NewSQLiteStore(dbPath, cfg)
		if err != nil {
			return nil, err
		}
		store.StartSweeper(ctx)
		log.Printf("sessions stored in %s", dbPath)
		return store, nil
	}
	store := session.NewMemoryStore(cfg)
	store.StartSweeper(ctx)
	log.Printf("sessions stored in memory only")
	return store, nil
}

// setupTracing wires the OTLP exporter when OTEL_EXPORTER_OTLP_ENDPOINT is
// set. Without it the otel API stays a no-op and nothing is exported.
func setupTracing(ctx context.Context) (func(context.Context) error, error) {
	if strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) == "" {
		return nil, nil
	}
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "costcoach"),
		)),
	)
	otel.SetTracerProvider(provider)
	log.Printf("OTLP tracing enabled")
	return provider.Shutdown, nil
}
