package user_test

import (
	"context"
	"os"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piatra/agenda-politicieni/internal/repositories/user"
	"github.com/piatra/agenda-politicieni/pkg/database"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "agenda"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewInstance(db, getTestLogger())
}

func TestUserRepository_GetOrUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := user.NewRepository(db, getTestLogger())
	ctx := context.Background()

	openidURL := "https://id.example/" + uuid.New().String()

	// unknown identity reads as nil
	got, err := repo.GetByOpenID(ctx, openidURL)
	require.NoError(t, err)
	assert.Nil(t, got)

	// first sighting creates the user
	created, err := repo.GetOrUpdate(ctx, openidURL, "Ana", "ana@example.com")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, openidURL, created.OpenIDURL)
	assert.Equal(t, "Ana", created.Name)

	// same identity resolves to the same row
	again, err := repo.GetOrUpdate(ctx, openidURL, "Ana", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// changed profile fields are refreshed in place
	renamed, err := repo.GetOrUpdate(ctx, openidURL, "Ana Pop", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, renamed.ID)
	assert.Equal(t, "Ana Pop", renamed.Name)

	found, err := repo.GetByOpenID(ctx, openidURL)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ana Pop", found.Name)
	assert.Equal(t, "ana@example.com", found.Email)
}
