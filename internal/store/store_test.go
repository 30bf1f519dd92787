package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"autopress/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	dbPath := filepath.Join(tmpDir, "autopress.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := NewStore(invalidPath)
	if err == nil {
		t.Error("Expected error when creating store in invalid directory")
	}
}

func TestReserveSubject(t *testing.T) {
	store := newTestStore(t)

	reserved, err := store.ReserveSubject("How to Brew Coffee", core.OriginFeed)
	if err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}
	if !reserved {
		t.Error("first reservation should succeed")
	}

	// Same title again must conflict
	reserved, err = store.ReserveSubject("How to Brew Coffee", core.OriginGenerated)
	if err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}
	if reserved {
		t.Error("second reservation of the same title should conflict")
	}
}

func TestReserveSubject_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.ReserveSubject("Smart Home Basics", core.OriginFeed); err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}

	reserved, err := store.ReserveSubject("SMART HOME BASICS", core.OriginFeed)
	if err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}
	if reserved {
		t.Error("reservation should conflict regardless of case")
	}
}

func TestIsSubjectUsed(t *testing.T) {
	store := newTestStore(t)

	used, err := store.IsSubjectUsed("Unknown Topic")
	if err != nil {
		t.Fatalf("IsSubjectUsed failed: %v", err)
	}
	if used {
		t.Error("unknown title should not be used")
	}

	if _, err := store.ReserveSubject("Known Topic", core.OriginFeed); err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}

	used, err = store.IsSubjectUsed("known topic")
	if err != nil {
		t.Fatalf("IsSubjectUsed failed: %v", err)
	}
	if !used {
		t.Error("reserved title should count as used, case-insensitively")
	}
}

func TestMarkSubjectPublished(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.ReserveSubject("Topic A", core.OriginFeed); err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}
	if err := store.MarkSubjectPublished("Topic A", core.OriginFeed); err != nil {
		t.Fatalf("MarkSubjectPublished failed: %v", err)
	}

	records, err := store.ListUsedSubjects(10)
	if err != nil {
		t.Fatalf("ListUsedSubjects failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != "published" {
		t.Errorf("expected status published, got %q", records[0].Status)
	}
}

func TestMarkSubjectPublished_WithoutReservation(t *testing.T) {
	store := newTestStore(t)

	// External-request subjects bypass the selector and are never reserved
	if err := store.MarkSubjectPublished("Requested Topic", core.OriginExternalRequest); err != nil {
		t.Fatalf("MarkSubjectPublished failed: %v", err)
	}

	used, err := store.IsSubjectUsed("Requested Topic")
	if err != nil {
		t.Fatalf("IsSubjectUsed failed: %v", err)
	}
	if !used {
		t.Error("published subject should be in the used set")
	}
}

func TestReleaseSubject(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.ReserveSubject("Abandoned Topic", core.OriginGenerated); err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}
	if err := store.ReleaseSubject("Abandoned Topic"); err != nil {
		t.Fatalf("ReleaseSubject failed: %v", err)
	}

	reserved, err := store.ReserveSubject("Abandoned Topic", core.OriginGenerated)
	if err != nil {
		t.Fatalf("ReserveSubject failed: %v", err)
	}
	if !reserved {
		t.Error("released title should be reservable again")
	}
}

func TestReleaseSubject_DoesNotDropPublished(t *testing.T) {
	store := newTestStore(t)

	if err := store.MarkSubjectPublished("Kept Topic", core.OriginFeed); err != nil {
		t.Fatalf("MarkSubjectPublished failed: %v", err)
	}
	if err := store.ReleaseSubject("Kept Topic"); err != nil {
		t.Fatalf("ReleaseSubject failed: %v", err)
	}

	used, err := store.IsSubjectUsed("Kept Topic")
	if err != nil {
		t.Fatalf("IsSubjectUsed failed: %v", err)
	}
	if !used {
		t.Error("published subjects must never be released")
	}
}

func TestAppendRun_RecentRuns(t *testing.T) {
	store := newTestStore(t)

	outcome := core.PublishOutcome{
		RunID:     uuid.NewString(),
		Status:    core.StatusPublished,
		Title:     "Test Article",
		URL:       "https://example.com/posts/1",
		Keywords:  []string{"smart", "home"},
		Note:      "",
		Timestamp: time.Now().UTC(),
	}

	if err := store.AppendRun(outcome); err != nil {
		t.Fatalf("AppendRun failed: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	if got.RunID != outcome.RunID {
		t.Errorf("expected RunID %s, got %s", outcome.RunID, got.RunID)
	}
	if got.Status != core.StatusPublished {
		t.Errorf("expected status published, got %q", got.Status)
	}
	if got.URL != outcome.URL {
		t.Errorf("expected URL %s, got %s", outcome.URL, got.URL)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("expected 2 keywords, got %d", len(got.Keywords))
	}
}

func TestRecentRuns_Ordering(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		outcome := core.PublishOutcome{
			RunID:     uuid.NewString(),
			Status:    core.StatusFailed,
			Title:     "Run",
			Note:      "no subject found",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendRun(outcome); err != nil {
			t.Fatalf("AppendRun failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 0; i < len(runs)-1; i++ {
		if runs[i].Timestamp.Before(runs[i+1].Timestamp) {
			t.Error("runs should be ordered newest first")
		}
	}
}
