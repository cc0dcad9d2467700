// Package testutil provides shared helpers for tests.
package testutil

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/justestif/go-muji/internal/localstore"
)

// OpenStore opens an isolated in-memory SQLite store that is closed when
// the test ends.
func OpenStore(t *testing.T) *localstore.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := localstore.Open("file:"+name+"?mode=memory&cache=shared", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}
