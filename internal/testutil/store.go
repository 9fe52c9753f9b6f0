// Package testutil provides test helpers for opening throwaway document
// stores, creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"tradebook/internal/store"
)

// SetupTestStore opens a document store in a fresh temporary directory that is
// removed when the test ends.
func SetupTestStore(t *testing.T) *store.DB {
	t.Helper()

	db, err := store.Open(store.Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	return db
}
