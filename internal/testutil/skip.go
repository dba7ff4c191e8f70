package testutil

import (
	"os"
	"testing"
)

// SkipIfNoNetwork skips the test if PLASMID_TEST_SKIP_NETWORK is set.
// Use this for tests that listen on loopback TCP, which may not be
// available in sandboxed environments.
func SkipIfNoNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("PLASMID_TEST_SKIP_NETWORK") != "" {
		t.Skip("skipping network test: PLASMID_TEST_SKIP_NETWORK is set")
	}
}
