package testutil

import (
	"os"
	"testing"
	"time"

	"dometriks/pkg/client"
	"dometriks/pkg/config"
	"dometriks/pkg/logger"
)

const (
	DefaultDatabaseName = "dometriks_test"
)

// RequireMongo returns the configured test Mongo URI, skipping the test
// when none is set. Integration tests never run against an implicit
// local instance by accident.
func RequireMongo(t *testing.T) string {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping integration test")
	}
	return uri
}

// NewTestConfig builds a config wired to a live Mongo connection, the
// way the services see it at runtime.
func NewTestConfig(t *testing.T, helper *MongoHelper) *config.Config {
	t.Helper()

	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "integration-test",
	})

	c := client.NewClient()
	c.Mongo = helper.Client

	return &config.Config{
		MongoDatabaseName:  helper.DBName,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		SearchRadiusMeters: 10000,
		Log:                log,
		Client:             c,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
