package integration

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	recordrepo "github.com/Ramsey-B/poppy/internal/repositories/record"
	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
)

// setupDB connects to the database named by TEST_DATABASE_URL. The
// schema from db/schema.sql must already be applied.
func setupDB(t *testing.T) database.DB {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	db, err := database.Connect(context.Background(), database.ConnectConfig{
		URL:         url,
		TLSInsecure: true,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestDonorLifecycle(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	repo := recordrepo.NewRepository(db, logger)

	donors, ok := schema.Resolve("donors")
	require.True(t, ok)

	created, err := repo.Insert(ctx, donors, models.Row{
		"donor_name": "Integration Test Donor",
		"blood_type": "AB+",
		"address":    "",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotNil(t, created["donor_id"])
	assert.Nil(t, created["address"], "empty strings should persist as NULL")

	id := toString(t, created["donor_id"])
	t.Cleanup(func() { _, _ = repo.Delete(ctx, donors, id) })

	updated, err := repo.Update(ctx, donors, id, models.Row{
		"donor_id":   id,
		"donor_name": "Renamed Donor",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed Donor", updated["donor_name"])

	rows, err := repo.List(ctx, donors)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	deleted, err := repo.Delete(ctx, donors, id)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "Renamed Donor", deleted["donor_name"])

	gone, err := repo.Delete(ctx, donors, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCountMatchesList(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	repo := recordrepo.NewRepository(db, logger)

	donors, ok := schema.Resolve("donors")
	require.True(t, ok)

	rows, err := repo.List(ctx, donors)
	require.NoError(t, err)

	count, err := repo.Count(ctx, donors)
	require.NoError(t, err)
	assert.Equal(t, int64(len(rows)), count["count"])
}

func toString(t *testing.T, v any) string {
	t.Helper()
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		t.Fatalf("unexpected primary key type %T", v)
		return ""
	}
}
