package testsupport

import (
	"testing"

	"subtrans/internal/config"
	"subtrans/internal/jobstore"
)

// MustOpenStore opens a job store in a per-test temp directory and closes it
// on cleanup.
func MustOpenStore(t *testing.T, cfg *config.Config) *jobstore.Store {
	t.Helper()

	if cfg == nil {
		cfg = NewConfig(t)
	}
	store, err := jobstore.Open(cfg)
	if err != nil {
		t.Fatalf("open job store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close job store: %v", err)
		}
	})
	return store
}
