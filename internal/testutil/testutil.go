// Package testutil provides helpers for integration tests that need a
// real PostgreSQL or Redis instance.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rallypoint/rallypoint/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// migrationSets lists each migration pair in dependency order.
// Landmarks and beacons reference users, so teardown runs in reverse.
var migrationSets = []string{
	"000001_users",
	"000002_beacons",
	"000003_landmarks",
}

// ResetSchema drops and recreates all tables for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	for i := len(migrationSets) - 1; i >= 0; i-- {
		if err := applyMigration(ctx, pool, root, migrationSets[i]+".down.sql"); err != nil {
			return err
		}
	}
	for _, set := range migrationSets {
		if err := applyMigration(ctx, pool, root, set+".up.sql"); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, root, name string) error {
	sql, err := os.ReadFile(filepath.Join(root, "migrations", name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an anonymous-capable test user with sensible defaults.
func NewTestUser(t testing.TB, name string) *model.User {
	t.Helper()
	return &model.User{
		ID:        UniqueID("user"),
		Name:      name,
		BeaconIDs: []string{},
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestBeacon creates an active test beacon led by the given user.
func NewTestBeacon(t testing.TB, leaderID, shortcode string) *model.Beacon {
	t.Helper()
	now := time.Now().UTC()
	return &model.Beacon{
		ID:          UniqueID("beacon"),
		Shortcode:   shortcode,
		LeaderID:    leaderID,
		FollowerIDs: []string{},
		Location:    model.Location{Lat: 49.2827, Lon: -123.1207},
		LandmarkIDs: []string{},
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}
}

// NewTestLandmark creates a test landmark on the given beacon.
func NewTestLandmark(t testing.TB, beaconID, createdBy string) *model.Landmark {
	t.Helper()
	return &model.Landmark{
		ID:        UniqueID("landmark"),
		BeaconID:  beaconID,
		CreatedBy: createdBy,
		Name:      "meeting point",
		Location:  model.Location{Lat: 49.2827, Lon: -123.1207},
		CreatedAt: time.Now().UTC(),
	}
}

// UniqueShortcode generates a unique shortcode for tests.
func UniqueShortcode(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1000000)
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
