package integration

import (
	"log"
	"os"
	"strconv"
	"testing"

	"github.com/joho/godotenv"
)

// requireEnv loads .env from the repository root and skips the test when key is unset.
func requireEnv(t *testing.T, key string) string {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("Skipping integration test: %s not set", key)
	}
	return value
}

func getenvBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
