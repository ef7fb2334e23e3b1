package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/event-scheduler/internal/config"
	"github.com/deppfellow/event-scheduler/internal/database"
	"github.com/deppfellow/event-scheduler/internal/dberr"
	"github.com/deppfellow/event-scheduler/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	mongoOnce      sync.Once
	mongoContainer *mongodb.MongoDBContainer
	mongoURI       string
	mongoErr       error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if mongoContainer != nil {
		_ = testcontainers.TerminateContainer(mongoContainer)
	}
	os.Exit(code)
}

// testMongoURI returns EVENTSCHEDULER_TEST_MONGO_URI when set, otherwise it
// starts one MongoDB container shared by every test in the package.
func testMongoURI(t *testing.T) string {
	t.Helper()

	if uri := os.Getenv("EVENTSCHEDULER_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	if testing.Short() {
		t.Skip("Skipping MongoDB integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	mongoOnce.Do(func() {
		ctx := context.Background()
		mongoContainer, mongoErr = mongodb.Run(ctx, "mongo:7")
		if mongoErr != nil {
			return
		}
		mongoURI, mongoErr = mongoContainer.ConnectionString(ctx)
	})
	require.NoError(t, mongoErr, "start MongoDB container")

	return mongoURI
}

// setupTestRepository returns a repository on a throwaway collection.
func setupTestRepository(t *testing.T) *EventRepository {
	t.Helper()

	uri := testMongoURI(t)

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Database: config.DatabaseConfig{
			URI:              uri,
			Name:             "eventscheduler_test",
			ConnectTimeout:   5 * time.Second,
			OperationTimeout: 5 * time.Second,
			MaxPoolSize:      10,
		},
		Observability: config.DefaultObservabilityConfig(),
	}

	logger := zerolog.Nop()
	db, err := database.New(cfg, &logger, nil)
	require.NoError(t, err)

	collection := "events_" + primitive.NewObjectID().Hex()
	ctx := context.Background()
	require.NoError(t, db.EnsureIndexes(ctx, &logger, collection))

	t.Cleanup(func() {
		_ = db.DB.Collection(collection).Drop(ctx)
		_ = db.Close(ctx)
	})

	return NewEventRepository(db, collection)
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Event{
		Days:      []string{"Mon", "Wed"},
		StartTime: "2024-01-01T10:00:00Z",
		EndTime:   "2024-01-01T12:00:00Z",
		CreatedAt: Now(),
		UpdatedAt: Now(),
	})
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Days, got.Days)
	assert.Equal(t, created.StartTime, got.StartTime)
	assert.Empty(t, got.Submissions)

	_, err = repo.GetByID(ctx, primitive.NewObjectID())
	assert.Equal(t, dberr.NotFound, dberr.ErrCode(err))
}

func TestEventRepository_UpsertSubmission(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Event{Days: []string{"Fri"}, CreatedAt: Now(), UpdatedAt: Now()})
	require.NoError(t, err)

	_, err = repo.UpsertSubmission(ctx, created.ID, model.Submission{
		Username: "user1", Times: []string{"2024-01-05T10:00:00Z"}, UpdatedAt: Now(),
	})
	require.NoError(t, err)

	updated, err := repo.UpsertSubmission(ctx, created.ID, model.Submission{
		Username: "user1", Times: []string{"2024-01-05T11:00:00Z"}, UpdatedAt: Now(),
	})
	require.NoError(t, err)
	require.Len(t, updated.Submissions, 1)
	assert.Equal(t, []string{"2024-01-05T11:00:00Z"}, updated.Submissions[0].Times)

	_, err = repo.UpsertSubmission(ctx, primitive.NewObjectID(), model.Submission{Username: "user1", Times: []string{}})
	assert.Equal(t, dberr.NotFound, dberr.ErrCode(err))
}

func TestEventRepository_ConcurrentFirstSubmissions(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Event{Days: []string{"Sat"}, CreatedAt: Now(), UpdatedAt: Now()})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpsertSubmission(ctx, created.ID, model.Submission{
				Username: "same", Times: []string{"2024-01-06T10:00:00Z"}, UpdatedAt: Now(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Submissions, 1, "one submission per participant")
}
