package forum

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/ButyrinIA/anonforum/internal/storage"
	"github.com/ButyrinIA/anonforum/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyBackend(t *testing.T) {
	store, backend := newTestStore(t, newClock())

	doc := store.Document()
	assert.Equal(t, SchemaVersion, doc.Version)
	assert.Empty(t, doc.Posts)
	assert.Equal(t, models.DefaultSettings(), doc.Settings)
	assert.Equal(t, models.Stats{}, store.GetStats())

	_, err := backend.Get(context.Background(), storage.DataKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "Пустой документ без сида не сохраняется")
}

func TestOpen_Seed(t *testing.T) {
	clock := newClock()
	backend := memory.New()
	seed := func(now time.Time) []models.Post {
		return []models.Post{
			{
				Title: "Seeded", Content: "Seeded content", Category: "tech",
				Tags: []string{"go"}, Timestamp: now.Add(-time.Hour).UnixMilli(), Likes: 3,
				Comments: []models.Comment{{Content: "First", AnonID: "SeniorDev", Timestamp: now.UnixMilli()}},
			},
		}
	}

	store := Open(context.Background(), backend, WithClock(clock.Now), WithSeed(seed))

	posts := store.GetPosts(models.CategoryAll, SortByTimestamp)
	require.Len(t, posts, 1)
	assert.NotEmpty(t, posts[0].ID)
	assert.NotEmpty(t, posts[0].AnonID)
	assert.NotEmpty(t, posts[0].Comments[0].ID)
	assert.Equal(t, "SeniorDev", posts[0].Comments[0].AnonID)
	assert.Equal(t, models.Stats{TotalPosts: 1, TotalComments: 1, TotalLikes: 3}, store.GetStats())

	raw, err := backend.Get(context.Background(), storage.DataKey)
	require.NoError(t, err)
	var persisted models.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Len(t, persisted.Posts, 1)

	// повторное открытие не сидирует заново
	reopened := Open(context.Background(), backend, WithClock(clock.Now), WithSeed(seed))
	assert.Len(t, reopened.GetPosts(models.CategoryAll, ""), 1)
}

func TestOpen_ClearedStoreIsNotReseeded(t *testing.T) {
	clock := newClock()
	backend := memory.New()
	ctx := context.Background()
	seed := func(now time.Time) []models.Post {
		return []models.Post{{Title: "Seeded", Content: "Seeded content", Category: "tech", Timestamp: now.UnixMilli()}}
	}

	store := Open(ctx, backend, WithClock(clock.Now), WithSeed(seed))
	require.Len(t, store.GetPosts(models.CategoryAll, ""), 1)
	require.NoError(t, store.ClearAllData(ctx))

	reopened := Open(ctx, backend, WithClock(clock.Now), WithSeed(seed))
	assert.Empty(t, reopened.GetPosts(models.CategoryAll, ""))
	assert.Equal(t, models.Stats{}, reopened.GetStats())
}

func TestOpen_SeedAfterReset(t *testing.T) {
	seed := func(now time.Time) []models.Post {
		return []models.Post{{Title: "Seeded", Content: "Seeded content", Category: "tech", Timestamp: now.UnixMilli()}}
	}

	t.Run("foreign version is replaced by samples", func(t *testing.T) {
		backend := memory.New()
		require.NoError(t, backend.Set(context.Background(), storage.DataKey, `{"version":"0.9.0","posts":[]}`))

		store := Open(context.Background(), backend, WithSeed(seed))
		assert.Len(t, store.GetPosts(models.CategoryAll, ""), 1)
	})

	t.Run("read error does not seed", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("Get", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

		store := Open(context.Background(), backend, WithSeed(seed))
		assert.Empty(t, store.GetPosts(models.CategoryAll, ""))
		backend.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOpen_ResetsBrokenOrForeignData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json"},
		{"other version", `{"version":"0.9.0","posts":[{"id":"p1","title":"old"}]}`},
		{"no version", `{"posts":[{"id":"p1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := memory.New()
			require.NoError(t, backend.Set(context.Background(), storage.DataKey, tt.raw))

			store := Open(context.Background(), backend)
			assert.Empty(t, store.GetPosts(models.CategoryAll, ""))
			assert.Equal(t, SchemaVersion, store.Document().Version)
		})
	}
}

func TestOpen_LoadsPersistedDocument(t *testing.T) {
	clock := newClock()
	store, backend := newTestStore(t, clock)
	created := createPost(t, store, clock, validInput("Persisted", "tech", "a,b"))

	reopened := Open(context.Background(), backend, WithClock(clock.Now))
	got, ok := reopened.GetPost(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestOpen_BackendReadError(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Get", mock.Anything, storage.DataKey).Return("", errors.New("quota exceeded"))
	backend.On("Get", mock.Anything, storage.LikedKey).Return("", errors.New("quota exceeded"))

	store := Open(context.Background(), backend)
	assert.Empty(t, store.GetPosts(models.CategoryAll, ""))
	assert.False(t, store.IsLiked("p1"))
	backend.AssertExpectations(t)
}

func TestPersist_WriteFailureKeepsMemoryState(t *testing.T) {
	backend := &mockBackend{}
	writeErr := errors.New("quota exceeded")
	backend.On("Get", mock.Anything, mock.Anything).Return("", storage.ErrNotFound)
	backend.On("Set", mock.Anything, storage.DataKey, mock.Anything).Return(writeErr)
	backend.On("Set", mock.Anything, storage.LikedKey, mock.Anything).Return(writeErr)

	store := Open(context.Background(), backend)

	post, err := store.CreatePost(context.Background(), validInput("Unsaved", "general", ""))
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.ErrorIs(t, err, writeErr)
	assert.NotEmpty(t, post.ID)

	_, ok := store.GetPost(post.ID)
	assert.True(t, ok, "Пост остается в памяти")

	// лайк засчитан, хотя ни документ, ни набор лайков не сохранились
	likes, err := store.LikePost(context.Background(), post.ID)
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.Equal(t, 1, likes)
	assert.True(t, store.IsLiked(post.ID))

	assert.Equal(t, models.Stats{TotalPosts: 1, TotalLikes: 1}, store.GetStats())
}

func TestPersist_StampsLastUpdate(t *testing.T) {
	clock := newClock()
	store, backend := newTestStore(t, clock)

	clock.Advance(time.Hour)
	require.NoError(t, store.Persist(context.Background()))

	raw, err := backend.Get(context.Background(), storage.DataKey)
	require.NoError(t, err)
	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, clock.Now().UnixMilli(), doc.LastUpdate)
}

func TestClearAllData(t *testing.T) {
	clock := newClock()
	store, backend := newTestStore(t, clock)
	ctx := context.Background()

	post := createPost(t, store, clock, validInput("To be cleared", "tech", "x"))
	_, err := store.CreateComment(ctx, post.ID, models.CommentInput{Content: "hi"})
	require.NoError(t, err)
	_, err = store.LikePost(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, store.ClearAllData(ctx))

	assert.Equal(t, models.Stats{}, store.GetStats())
	assert.Empty(t, store.GetPosts(models.CategoryAll, ""))
	assert.False(t, store.IsLiked(post.ID))

	_, err = backend.Get(ctx, storage.LikedKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetStorageInfo(t *testing.T) {
	clock := newClock()
	backend := memory.New()
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "k", string(make([]byte, 2047))))

	store := Open(ctx, backend, WithClock(clock.Now), WithCapacity(4096))

	info := store.GetStorageInfo(ctx)
	assert.Equal(t, models.StorageInfo{Used: 2, Total: 4, Percentage: 50}, info)
}

func TestGetStorageInfo_BackendError(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Get", mock.Anything, mock.Anything).Return("", storage.ErrNotFound)
	backend.On("Keys", mock.Anything).Return([]string(nil), errors.New("unavailable"))

	store := Open(context.Background(), backend)

	info := store.GetStorageInfo(context.Background())
	assert.Equal(t, models.StorageInfo{Used: 0, Total: 5120, Percentage: 0}, info)
}

func TestDataSize(t *testing.T) {
	clock := newClock()
	store, _ := newTestStore(t, clock)
	assert.Equal(t, 0, store.DataSize())

	input := validInput("Sizable post", "tech", "size,test")
	input.Content = strings.Repeat("content ", 60)
	for range 10 {
		createPost(t, store, clock, input)
	}

	data, err := json.Marshal(store.Document())
	require.NoError(t, err)
	require.Greater(t, len(data), 4096)
	assert.Equal(t, int(math.Round(float64(len(data))/1024)), store.DataSize())
	assert.GreaterOrEqual(t, store.DataSize(), 4)
}
