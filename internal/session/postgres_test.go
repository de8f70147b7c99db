package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joelkehle/costcoach/internal/costanalysis"
)

// Runs only against a disposable database, e.g.
// COSTCOACH_TEST_DATABASE_URL=postgres://localhost/costcoach_test go test ./internal/session
func TestPostgresRoundTrip(t *testing.T) {
	url := os.Getenv("COSTCOACH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("COSTCOACH_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, url, Config{SessionTTL: 24 * time.Hour})
	if err != nil {
		t.Fatalf("new postgres store: %v", err)
	}
	defer s.Close()

	sess, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer s.Delete(ctx, sess.ID)

	sess.State = StateCollect
	sess.Archetype = costanalysis.ArchetypeResale
	sess.Inputs["purchaseCost"] = 10000.0
	sess.AddTurn(RoleUser, "10000", time.Now())
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != StateCollect || got.Inputs["purchaseCost"] != 10000.0 {
		t.Fatalf("round trip lost state: %+v", got)
	}
	if len(got.Turns) != 1 {
		t.Fatalf("round trip lost turns: %+v", got.Turns)
	}

	sums, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, sum := range sums {
		if sum.ID == sess.ID && sum.Turns == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("session missing from list: %+v", sums)
	}

	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, sess.ID); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
