package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	mongoMigration "buslane/internal/migrations/mongo"
	"buslane/pkg/client"
	"buslane/pkg/config"
	"buslane/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EnvMongoURI       = "TEST_MONGO_URI"
	connectionTimeout = 10 * time.Second
)

// TestCarrierID is the carrier every stub token resolves to.
const TestCarrierID = "carrier-integration"

// SetupConfig connects to the Mongo named by TEST_MONGO_URI, runs the
// migrations against a throwaway database and returns a ready config.
// Tests are skipped when the variable is unset, so the suite is a no-op
// on machines without a local Mongo.
func SetupConfig(t *testing.T) *config.Config {
	t.Helper()

	mongoURI := os.Getenv(EnvMongoURI)
	if mongoURI == "" {
		t.Skipf("%s not set, skipping integration test", EnvMongoURI)
	}

	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "integration-test",
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB at %s: %v", mongoURI, err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB at %s: %v", mongoURI, err)
	}

	dbName := fmt.Sprintf("buslane_test_%d", time.Now().UnixNano())

	cfg := &config.Config{
		MongoURI:          mongoURI,
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		SlotLockTTL:       30 * time.Second,
		Log:               log,
		Client:            client.NewClient(),
	}
	cfg.Client.Mongo = mongoClient

	migrationCtx, migrationCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer migrationCancel()
	if err := mongoMigration.RunMigration(migrationCtx, mongoClient, dbName); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()
		_ = mongoClient.Database(dbName).Drop(ctx)
		_ = mongoClient.Disconnect(ctx)
	})

	return cfg
}

// WithAccountsStub attaches an accounts service stub to the config. Every
// token except "deny" resolves to TestCarrierID.
func WithAccountsStub(t *testing.T, cfg *config.Config) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") == "deny" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"carrier_id": "` + TestCarrierID + `"}`))
	}))
	t.Cleanup(srv.Close)

	cfg.Client.Accounts = client.NewAccountsClient(srv.URL, 2*time.Second)
}
