package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads .env so binary tests see the same environment as a local run
func TestMain(m *testing.M) {
	// Missing .env is normal in CI
	_ = godotenv.Load()

	os.Exit(m.Run())
}
