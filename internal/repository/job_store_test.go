package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pdf-slide-synth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(id string) domain.ConversionJob {
	return domain.ConversionJob{
		ID:        id,
		UserID:    "user-1",
		Title:     "Report " + id,
		Status:    domain.JobStatusCompleted,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Format:    domain.ExportFormatPPTX,
		Variants: []domain.SlideDeckVariant{
			domain.StandardVariants[0].NewVariant([]domain.SlideRecord{
				{Title: "Intro", Bullets: []string{"one"}},
			}),
		},
	}
}

func ids(jobs []domain.ConversionJob) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestJobStore_EmptyListsForNewUser(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()

	recent, err := store.LoadRecent(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)

	archive, err := store.LoadArchive(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, archive)
}

func TestJobStore_AddRecentPrepends(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()

	require.NoError(t, store.AddRecent(ctx, "u", testJob("a")))
	require.NoError(t, store.AddRecent(ctx, "u", testJob("b")))

	recent, err := store.LoadRecent(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(recent))
	assert.Equal(t, "Intro", recent[0].Variants[0].Slides[0].Title)
}

func TestJobStore_AddRecentRejectsInvalidJob(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	job := testJob("a")
	job.Variants = nil

	err := store.AddRecent(context.Background(), "u", job)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestJobStore_UsersAreIsolated(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()
	require.NoError(t, store.AddRecent(ctx, "alice", testJob("a")))

	recent, err := store.LoadRecent(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = store.Find(ctx, "bob", "a")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestJobStore_ArchiveMovesJob(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()
	require.NoError(t, store.AddRecent(ctx, "u", testJob("a")))
	require.NoError(t, store.AddRecent(ctx, "u", testJob("b")))

	require.NoError(t, store.Archive(ctx, "u", "a"))

	recent, _ := store.LoadRecent(ctx, "u")
	archive, _ := store.LoadArchive(ctx, "u")
	assert.Equal(t, []string{"b"}, ids(recent))
	assert.Equal(t, []string{"a"}, ids(archive))

	found, err := store.Find(ctx, "u", "a")
	require.NoError(t, err)
	assert.Equal(t, "Report a", found.Title)

	assert.ErrorIs(t, store.Archive(ctx, "u", "a"), domain.ErrJobNotFound)
	assert.ErrorIs(t, store.Archive(ctx, "u", "zzz"), domain.ErrJobNotFound)
}

func TestJobStore_DeletePrefersArchive(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()
	require.NoError(t, store.SaveRecent(ctx, "u", []domain.ConversionJob{testJob("x"), testJob("y")}))
	require.NoError(t, store.SaveArchive(ctx, "u", []domain.ConversionJob{testJob("x")}))

	require.NoError(t, store.Delete(ctx, "u", "x"))
	recent, _ := store.LoadRecent(ctx, "u")
	archive, _ := store.LoadArchive(ctx, "u")
	assert.Equal(t, []string{"x", "y"}, ids(recent))
	assert.Empty(t, archive)

	require.NoError(t, store.Delete(ctx, "u", "x"))
	recent, _ = store.LoadRecent(ctx, "u")
	assert.Equal(t, []string{"y"}, ids(recent))

	assert.ErrorIs(t, store.Delete(ctx, "u", "x"), domain.ErrJobNotFound)
}

func TestJobStore_CorruptedListIsCleared(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, recentKey("u"), []byte("{not json")))
	store := NewJobStore(kv, nopLogger{})

	recent, err := store.LoadRecent(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = kv.Get(ctx, recentKey("u"))
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestJobStore_Clear(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()
	require.NoError(t, store.AddRecent(ctx, "u", testJob("a")))
	require.NoError(t, store.AddRecent(ctx, "u", testJob("b")))
	require.NoError(t, store.Archive(ctx, "u", "a"))

	require.NoError(t, store.Clear(ctx, "u"))
	recent, _ := store.LoadRecent(ctx, "u")
	archive, _ := store.LoadArchive(ctx, "u")
	assert.Empty(t, recent)
	assert.Empty(t, archive)
}

func TestJobStore_ConcurrentAddsAreNotLost(t *testing.T) {
	store := NewJobStore(NewMemoryKVStore(), nopLogger{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.AddRecent(ctx, "u", testJob(fmt.Sprintf("job-%d", i))))
		}(i)
	}
	wg.Wait()

	recent, err := store.LoadRecent(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, recent, 20)
}
