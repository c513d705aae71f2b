package forum

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/ButyrinIA/anonforum/internal/storage/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// мок для интерфейса storage.Backend
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockBackend) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockBackend) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestStore(t *testing.T, clock *fakeClock) (*Store, *memory.MemoryStorage) {
	t.Helper()
	backend := memory.New()
	store := Open(context.Background(), backend,
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewPCG(1, 2))))
	return store, backend
}

func validInput(title, category, tags string) models.PostInput {
	return models.PostInput{
		Title:    title,
		Content:  "Some content long enough to pass validation",
		Category: category,
		Tags:     tags,
	}
}

// createPost создает пост и сдвигает часы, чтобы метки времени различались
func createPost(t *testing.T, s *Store, clock *fakeClock, input models.PostInput) models.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), input)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	return post
}

func assertStatsInvariant(t *testing.T, s *Store) {
	t.Helper()
	doc := s.Document()
	var comments, likes int
	for _, p := range doc.Posts {
		comments += len(p.Comments)
		likes += p.Likes
	}
	stats := s.GetStats()
	require.Equal(t, len(doc.Posts), stats.TotalPosts)
	require.Equal(t, comments, stats.TotalComments)
	require.Equal(t, likes, stats.TotalLikes)
}
