//go:build integration

// End-to-end test: a real HTTP server over a SQLite-backed session store,
// driven through the API client the CLI uses. Run with:
//
//	go test -tags integration ./tests/
package tests

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/costcoach/internal/apiclient"
	"github.com/joelkehle/costcoach/internal/httpapi"
	"github.com/joelkehle/costcoach/internal/session"
)

func startServer(t *testing.T, dbPath string) *apiclient.Client {
	t.Helper()
	store, err := session.NewSQLiteStore(dbPath, session.Config{})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(httpapi.NewServer(httpapi.Config{Store: store}))
	t.Cleanup(srv.Close)
	return apiclient.NewClient(srv.URL)
}

func TestEndToEndGuidedConsultation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "costcoach.db")
	client := startServer(t, dbPath)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}

	archetypes, err := client.Archetypes(ctx)
	if err != nil {
		t.Fatalf("archetypes: %v", err)
	}
	if len(archetypes) != 4 {
		t.Fatalf("expected 4 archetypes, got %d", len(archetypes))
	}

	// Full guided conversation, manufacturing scenario.
	turn, err := client.Chat(ctx, "", "hola")
	if err != nil {
		t.Fatalf("chat open: %v", err)
	}
	id := turn.SessionID
	for _, msg := range []string{"manufactura", "3000", "2000", "300", "9000"} {
		if turn, err = client.Chat(ctx, id, msg); err != nil {
			t.Fatalf("chat %q: %v", msg, err)
		}
		if turn.Done {
			t.Fatalf("conversation finished early at %q", msg)
		}
	}
	if turn, err = client.Chat(ctx, id, "sí"); err != nil {
		t.Fatalf("chat confirm: %v", err)
	}
	if !turn.Done || turn.Result == nil || turn.Result.Analysis == nil {
		t.Fatalf("expected a finished consultation, got %+v", turn)
	}
	if turn.Result.Analysis.TotalCost != 5600 || turn.Result.Analysis.OptimalPrice != 8400 {
		t.Fatalf("unexpected analysis numbers: %+v", turn.Result.Analysis)
	}

	// The session snapshot carries the conversation and the result.
	sess, err := client.Session(ctx, id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.State != session.StateDone || sess.LastResult == nil {
		t.Fatalf("unexpected session state: %+v", sess)
	}

	report, err := client.SessionReport(ctx, id)
	if err != nil {
		t.Fatalf("session report: %v", err)
	}
	for _, section := range []string{"## Resumen de costos", "## Precios sugeridos", "## Plan de recomendaciones", "$8.400"} {
		if !strings.Contains(report, section) {
			t.Fatalf("report missing %q:\n%s", section, report)
		}
	}
}

func TestEndToEndSessionSurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "costcoach.db")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := startServer(t, dbPath)
	turn, err := client.Chat(ctx, "", "reventa")
	if err != nil {
		t.Fatalf("chat open: %v", err)
	}
	id := turn.SessionID
	if _, err := client.Chat(ctx, id, "10000"); err != nil {
		t.Fatalf("chat: %v", err)
	}

	// Same database file, fresh store and server: the consultation resumes
	// at the field where it stopped.
	client2 := startServer(t, dbPath)
	turn, err = client2.Chat(ctx, id, "5")
	if err != nil {
		t.Fatalf("chat after restart: %v", err)
	}
	if turn.Done {
		t.Fatalf("conversation should still be collecting fields")
	}
	sess, err := client2.Session(ctx, id)
	if err != nil {
		t.Fatalf("session after restart: %v", err)
	}
	if sess.Archetype != "resale" || sess.FieldIndex != 2 {
		t.Fatalf("resumed session out of position: %+v", sess)
	}
}

func TestEndToEndStatelessAnalysis(t *testing.T) {
	client := startServer(t, filepath.Join(t.TempDir(), "costcoach.db"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.Analyze(ctx, "service", map[string]any{
		"hourlyRate": 50000, "projectHours": 20, "experienceLevel": "senior", "operationalCost": 200000,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Analysis == nil || result.Analysis.FinalPrice != 1700000 || result.Analysis.MonthlyIncome != 6600000 {
		t.Fatalf("unexpected analysis: %+v", result.Analysis)
	}

	report, err := client.Report(ctx, "service", map[string]any{
		"hourlyRate": 50000, "projectHours": 20, "experienceLevel": "senior", "operationalCost": 200000,
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(report, "$1.700.000") {
		t.Fatalf("report missing final price:\n%s", report)
	}
}
