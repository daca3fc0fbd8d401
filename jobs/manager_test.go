package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tvshowcase/database"
	"tvshowcase/models"
	"tvshowcase/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCatalog records calls instead of touching a database
type fakeCatalog struct {
	mu       sync.Mutex
	resets   int
	resetErr error
}

func (f *fakeCatalog) Reset(_ context.Context, catalog []models.SeedCategory) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	n := 0
	for _, c := range catalog {
		n += len(c.Videos)
	}
	return n, nil
}

func (f *fakeCatalog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func setupTestJobManager(t *testing.T, spec string) (*JobManager, *fakeCatalog, func()) {
	catalog := &fakeCatalog{}
	jm, err := NewJobManager(NewCatalogResetJob(catalog, zap.NewNop()), spec, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create job manager: %v", err)
	}

	cleanup := func() {
		if jm.IsRunning() {
			jm.Stop()
		}
	}
	return jm, catalog, cleanup
}

func TestJobManager_NewJobManager(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t, "0 4 * * *")
	defer cleanup()

	assert.NotNil(t, jm)
	assert.NotNil(t, jm.resetJob)
	assert.NotNil(t, jm.schedule)
	assert.False(t, jm.IsRunning())
}

func TestJobManager_InvalidSchedule(t *testing.T) {
	_, err := NewJobManager(NewCatalogResetJob(&fakeCatalog{}, zap.NewNop()), "not a schedule", zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reset schedule")
}

func TestJobManager_StartStop(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t, "@every 1h")
	defer cleanup()

	// Initially not running
	assert.False(t, jm.IsRunning())

	jm.Start()
	assert.True(t, jm.IsRunning())

	jm.Stop()
	assert.False(t, jm.IsRunning())
}

func TestJobManager_DoubleStart(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t, "@every 1h")
	defer cleanup()

	jm.Start()
	jm.Start()
	assert.True(t, jm.IsRunning())

	jm.Stop()
	assert.False(t, jm.IsRunning())
}

func TestJobManager_StopWithoutStart(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t, "@every 1h")
	defer cleanup()

	// Should not panic
	jm.Stop()
	jm.Stop()
	assert.False(t, jm.IsRunning())
}

func TestJobManager_StartStopCycle(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t, "@every 1h")
	defer cleanup()

	for i := 0; i < 3; i++ {
		jm.Start()
		assert.True(t, jm.IsRunning())
		jm.Stop()
		assert.False(t, jm.IsRunning())
	}
}

func TestJobManager_RunsScheduledReset(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping scheduler timing test in short mode")
	}

	jm, catalog, cleanup := setupTestJobManager(t, "@every 1s")
	defer cleanup()

	jm.Start()

	assert.Eventually(t, func() bool {
		return catalog.count() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCatalogResetJob_ResetError(t *testing.T) {
	catalog := &fakeCatalog{resetErr: errors.New("disk full")}
	job := NewCatalogResetJob(catalog, zap.NewNop())

	created, err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reset catalog")
	assert.Zero(t, created)
	assert.Equal(t, 1, catalog.count())
}

func TestCatalogResetJob_RestoresSampleCatalog(t *testing.T) {
	testDB, err := database.NewDB(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	}()
	require.NoError(t, testDB.InitSchema())

	ctx := context.Background()
	repo := repository.NewCatalogRepository(testDB)
	_, err = repo.LoadNextID(ctx)
	require.NoError(t, err)

	job := NewCatalogResetJob(repo, zap.NewNop())

	created, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 43, created)

	// Mutate the catalog, then reset again
	_, err = repo.SetRented(ctx, 0, true)
	require.NoError(t, err)
	_, err = repo.DuplicateCategory(ctx, "Google+", "Google+ copy")
	require.NoError(t, err)

	created, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 43, created)

	video, err := repo.GetVideo(ctx, 0)
	assert.NoError(t, err)
	assert.False(t, video.Rented)

	categories, err := repo.ListCategories(ctx)
	assert.NoError(t, err)
	assert.Len(t, categories, 5)
	assert.Equal(t, int64(43), repo.NextID())
}

func TestCatalogResetJob_FailedSourceKeepsCatalog(t *testing.T) {
	catalog := &fakeCatalog{}
	job := NewCatalogResetJob(catalog, zap.NewNop())
	job.source = func() ([]models.SeedCategory, error) { return nil, errors.New("bad sample") }

	_, err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, catalog.count())
}
