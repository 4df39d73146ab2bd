package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// RequireTestEnvironment fails the test unless GO_ENV is "test". Suites that load the
// real configuration call it before touching anything the configuration points at.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test. Current GO_ENV=%q.", env)
	}
}

// RunInTestEnvironment runs m with GO_ENV=test. An unset GO_ENV is defaulted; any other
// value aborts the run, since the environment may point at a shared database.
func RunInTestEnvironment(m *testing.M) int {
	switch env := os.Getenv("GO_ENV"); env {
	case "test":
	case "":
		if err := os.Setenv("GO_ENV", "test"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set GO_ENV=test: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: refusing to run with GO_ENV=%q. Use GO_ENV=test.\n", env)
		return 1
	}

	PrintEnvironmentInfo()
	return m.Run()
}

// PrintEnvironmentInfo prints the environment the tests run under
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DATABASE_URL: %s\n", maskDatabaseURL(os.Getenv("DATABASE_URL")))
	fmt.Printf("  STORAGE_BACKEND: %s\n", os.Getenv("STORAGE_BACKEND"))
}

// maskDatabaseURL hides credentials, keeping enough to tell which database is used
func maskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	if at := strings.LastIndex(url, "@"); at >= 0 {
		url = "***" + url[at:]
	}
	if !strings.Contains(url, "test") {
		return url + " [WARNING: may not be test DB]"
	}
	return url
}
