package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/joelkehle/costcoach/internal/costanalysis"
)

func TestSQLiteSessionRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "sessions.db")
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cfg := Config{
		SessionTTL: 24 * time.Hour,
		Clock:      func() time.Time { return now },
	}
	ctx := context.Background()

	s1, err := NewSQLiteStore(dbPath, cfg)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}

	sess, err := s1.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sess.State = StateDone
	sess.Archetype = costanalysis.ArchetypeService
	sess.Inputs["hourlyRate"] = 50000.0
	sess.AddTurn(RoleCoach, "¿Cuánto cobras por hora?", now)
	sess.AddTurn(RoleUser, "50000", now)
	result := costanalysis.Analyze("service", map[string]any{
		"hourlyRate": 50000.0, "projectHours": 20.0, "operationalCost": 200000.0, "experienceLevel": "senior",
	})
	sess.LastResult = &result
	if err := s1.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	s1.Close()

	// Reopen and verify the consultation survived.
	s2, err := NewSQLiteStore(dbPath, cfg)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.State != StateDone || got.Archetype != costanalysis.ArchetypeService {
		t.Fatalf("state lost across restart: %+v", got)
	}
	if got.Inputs["hourlyRate"] != 50000.0 {
		t.Fatalf("inputs lost across restart: %+v", got.Inputs)
	}
	if len(got.Turns) != 2 || got.Turns[1].Text != "50000" {
		t.Fatalf("turns lost across restart: %+v", got.Turns)
	}
	if got.LastResult == nil || got.LastResult.Analysis == nil {
		t.Fatalf("analysis result lost across restart")
	}
	if got.LastResult.Analysis.FinalPrice != 1700000 {
		t.Fatalf("restored analysis wrong: %+v", got.LastResult.Analysis)
	}
	if got.LastResult.Costs.Value("hourlyRate") != 50000 {
		t.Fatalf("restored cost input wrong: %+v", got.LastResult.Costs)
	}
}

func TestSQLiteDeletePersists(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "delete.db")
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cfg := Config{
		SessionTTL: 24 * time.Hour,
		Clock:      func() time.Time { return now },
	}
	ctx := context.Background()

	s1, err := NewSQLiteStore(dbPath, cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	sess, err := s1.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s1.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	s1.Close()

	s2, err := NewSQLiteStore(dbPath, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, err := s2.Get(ctx, sess.ID); !IsNotFound(err) {
		t.Fatalf("deleted session resurrected after restart: %v", err)
	}
}

func TestSQLiteExpiredRowsNotLoaded(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "expired.db")
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cfg := Config{
		SessionTTL: 24 * time.Hour,
		Clock:      func() time.Time { return now },
	}
	ctx := context.Background()

	s1, err := NewSQLiteStore(dbPath, cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	sess, err := s1.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s1.Close()

	now = now.Add(25 * time.Hour)
	s2, err := NewSQLiteStore(dbPath, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, err := s2.Get(ctx, sess.ID); !IsNotFound(err) {
		t.Fatalf("expired session should not load, got %v", err)
	}
	out, err := s2.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expired sessions must not be listed: %+v", out)
	}
}
