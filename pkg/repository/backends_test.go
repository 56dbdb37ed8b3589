package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/repository/firestore"
	"github.com/secmon-lab/tablero/pkg/repository/memory"
	"github.com/secmon-lab/tablero/pkg/repository/sqlite"
)

func newMemory(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLite(t *testing.T) interfaces.Repository {
	repo, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "tablero.db"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newFirestore(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	// unique prefix isolates each test from leftovers of earlier runs
	prefix := "test_" + uuid.NewString()[:8]
	repo, err := firestore.New(context.Background(), projectID, os.Getenv("FIRESTORE_DATABASE_ID"),
		firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// runAllBackends runs a conformance suite against every backend
func runAllBackends(t *testing.T, suite func(t *testing.T, newRepo func(t *testing.T) interfaces.Repository)) {
	t.Run("Memory", func(t *testing.T) { suite(t, newMemory) })
	t.Run("SQLite", func(t *testing.T) { suite(t, newSQLite) })
	t.Run("Firestore", func(t *testing.T) { suite(t, newFirestore) })
}

// sameTime compares timestamps with tolerance for backend precision
func sameTime(t *testing.T, got, want time.Time) {
	t.Helper()
	diff := got.Sub(want)
	if diff > time.Millisecond || diff < -time.Millisecond {
		t.Errorf("time mismatch: got %v, want %v", got, want)
	}
}
