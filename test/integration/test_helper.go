package integration

import (
	"os"
	"testing"
)

// BaseURL points at a running API instance. Tests are skipped unless
// INTEGRATION_BASE_URL is set, so the suite never runs against nothing.
var BaseURL = os.Getenv("INTEGRATION_BASE_URL")

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func requireServer(t *testing.T) {
	t.Helper()
	if BaseURL == "" {
		t.Skip("INTEGRATION_BASE_URL not set, skipping integration test")
	}
}
