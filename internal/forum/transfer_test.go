package forum

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/ButyrinIA/anonforum/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportData(t *testing.T) {
	clock := newClock()
	store, _ := newTestStore(t, clock)
	createPost(t, store, clock, validInput("Exported", "tech", "go"))

	before := store.Document()
	data, err := store.ExportData()
	require.NoError(t, err)

	var exported models.Export
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, SchemaVersion, exported.ExportVersion)
	assert.Equal(t, "2024-05-01T12:01:00.000Z", exported.ExportDate)
	assert.Equal(t, SchemaVersion, exported.Version)
	assert.Len(t, exported.Posts, 1)
	assert.Equal(t, models.Stats{TotalPosts: 1}, exported.Stats)

	assert.Equal(t, before, store.Document(), "Экспорт не меняет стейт")
}

func TestImportData_MergeRoundTrip(t *testing.T) {
	clock := newClock()
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	p := createPost(t, store, clock, validInput("Kept", "tech", "go"))
	_, err := store.CreateComment(ctx, p.ID, models.CommentInput{Content: "c"})
	require.NoError(t, err)
	createPost(t, store, clock, validInput("Kept too", "crypto", ""))

	posts := store.GetPosts(models.CategoryAll, SortByTimestamp)
	stats := store.GetStats()

	data, err := store.ExportData()
	require.NoError(t, err)

	added, err := store.ImportData(ctx, data, ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, posts, store.GetPosts(models.CategoryAll, SortByTimestamp))
	assert.Equal(t, stats, store.GetStats())
}

func TestImportData_MergeAppendsNewPosts(t *testing.T) {
	clock := newClock()
	source, _ := newTestStore(t, clock)
	createPost(t, source, clock, validInput("From source", "tech", ""))
	data, err := source.ExportData()
	require.NoError(t, err)

	target, _ := newTestStore(t, clock)
	local := createPost(t, target, clock, validInput("Local", "general", ""))

	added, err := target.ImportData(context.Background(), data, ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	doc := target.Document()
	require.Len(t, doc.Posts, 2)
	assert.Equal(t, local.ID, doc.Posts[0].ID)
	assert.Equal(t, "From source", doc.Posts[1].Title)
	assert.Equal(t, 2, target.GetStats().TotalPosts)
}

func TestImportData_MergeDropsDuplicatesInPayload(t *testing.T) {
	store, _ := newTestStore(t, newClock())
	payload := `{"posts":[
		{"id":"p1","title":"first","category":"tech","likes":2},
		{"id":"p1","title":"dup","category":"tech","likes":5}
	]}`

	added, err := store.ImportData(context.Background(), []byte(payload), ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	got, ok := store.GetPost("p1")
	require.True(t, ok)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, models.Stats{TotalPosts: 1, TotalLikes: 2}, store.GetStats())
}

func TestImportData_Replace(t *testing.T) {
	clock := newClock()
	backend := memory.New()
	store := Open(context.Background(), backend, WithClock(clock.Now))
	old := createPost(t, store, clock, validInput("Replaced", "tech", ""))

	payload := `{
		"version": "0.1.0",
		"posts": [{"id":"n1","title":"New","category":"random","likes":4,
			"comments":[{"id":"c1","content":"hey","timestamp":1}]}],
		"settings": {"theme":"light"},
		"stats": {"totalPosts": 99}
	}`
	added, err := store.ImportData(context.Background(), []byte(payload), ImportReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	doc := store.Document()
	assert.Equal(t, SchemaVersion, doc.Version)
	assert.Equal(t, models.Settings{"theme": "light"}, doc.Settings)
	assert.Equal(t, models.Stats{TotalPosts: 1, TotalComments: 1, TotalLikes: 4}, doc.Stats)
	_, ok := store.GetPost(old.ID)
	assert.False(t, ok)

	// сохраненный документ читается обратно несмотря на версию в payload
	reopened := Open(context.Background(), backend, WithClock(clock.Now))
	_, ok = reopened.GetPost("n1")
	assert.True(t, ok)
}

func TestImportData_ReplaceDefaultsSettings(t *testing.T) {
	store, _ := newTestStore(t, newClock())

	_, err := store.ImportData(context.Background(), []byte(`{"posts":[]}`), ImportReplace)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), store.Document().Settings)
}

func TestImportData_Invalid(t *testing.T) {
	clock := newClock()
	store, _ := newTestStore(t, clock)
	post := createPost(t, store, clock, validInput("Survivor", "tech", ""))

	payloads := []string{
		`not json`,
		`{}`,
		`{"posts": {"id": "p1"}}`,
		`{"posts": null}`,
		`[]`,
		`{"posts": [{"likes": "many"}]}`,
	}
	for _, payload := range payloads {
		_, err := store.ImportData(context.Background(), []byte(payload), ImportReplace)
		assert.ErrorIs(t, err, ErrInvalidImport, payload)
	}

	_, ok := store.GetPost(post.ID)
	assert.True(t, ok, "Некорректный импорт ничего не меняет")
	assert.Equal(t, 1, store.GetStats().TotalPosts)
}

func TestParseImportMode(t *testing.T) {
	mode, err := ParseImportMode("Replace")
	assert.NoError(t, err)
	assert.Equal(t, ImportReplace, mode)

	mode, err = ParseImportMode("")
	assert.NoError(t, err)
	assert.Equal(t, ImportMerge, mode)
	assert.Equal(t, "merge", mode.String())

	_, err = ParseImportMode("append")
	assert.Error(t, err)
}
