package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termtran/termtran/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestActiveEngine_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.ActiveEngine(ctx)
	require.NoError(t, err)
	assert.Empty(t, id, "fresh store must have no selection")

	require.NoError(t, s.SaveActiveEngine(ctx, "zhipu"))
	require.NoError(t, s.SaveActiveEngine(ctx, "ollama"))

	id, err = s.ActiveEngine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ollama", id, "latest selection wins")
}

func TestGlossary_AddListDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddGlossaryTerm(ctx, "zh", "en", "硅片", "silicon wafer"))
	require.NoError(t, s.AddGlossaryTerm(ctx, "zh", "en", "铸锭", "ingot casting"))
	require.NoError(t, s.AddGlossaryTerm(ctx, "en", "uk", "wafer", "пластина"))

	assert.Error(t, s.AddGlossaryTerm(ctx, "zh", "en", "  ", "blank"), "empty source term must be rejected")

	terms, err := s.GetGlossaryTerms(ctx, "zh", "en")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"硅片": "silicon wafer", "铸锭": "ingot casting"}, terms)

	all, err := s.ListGlossaryTerms(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	zhOnly, err := s.ListGlossaryTerms(ctx, "zh", "")
	require.NoError(t, err)
	require.Len(t, zhOnly, 2)

	require.NoError(t, s.DeleteGlossaryTerm(ctx, zhOnly[0].ID))
	remaining, err := s.ListGlossaryTerms(ctx, "zh", "en")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestGlossary_ReplaceOnSameSource(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddGlossaryTerm(ctx, "zh", "en", "组件", "module"))
	require.NoError(t, s.AddGlossaryTerm(ctx, "zh", "en", "组件", "assembly"))

	terms, err := s.GetGlossaryTerms(ctx, "zh", "en")
	require.NoError(t, err)
	assert.Equal(t, "assembly", terms["组件"], "re-adding a source term updates its target")
}

func TestMemory_CacheHit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, hit, err := s.GetCachedTranslation(ctx, "质量第一", "zh", "en")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.SaveToMemory(ctx, "质量第一", "zh", "en", "Quality first", "zhipu", nil))

	text, hit, err := s.GetCachedTranslation(ctx, "质量第一", "zh", "en")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "Quality first", text)

	// A different language pair misses.
	_, hit, err = s.GetCachedTranslation(ctx, "质量第一", "zh", "uk")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemory_UnicodeNormalizedKey(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// NFD and NFC representations of the same text share a cache entry.
	require.NoError(t, s.SaveToMemory(ctx, "café", "fr", "en", "coffee", "zhipu", nil))

	text, hit, err := s.GetCachedTranslation(ctx, "café", "fr", "en")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "coffee", text)
}

func TestMemory_InvalidateAndClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveToMemory(ctx, "文本一", "zh", "en", "text one", "zhipu", nil))
	require.NoError(t, s.SaveToMemory(ctx, "文本二", "zh", "en", "text two", "ollama", []string{"length_anomaly"}))

	entries, err := s.ListMemory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, s.InvalidateMemory(ctx, entries[0].ID))

	_, hit, err := s.GetCachedTranslation(ctx, entries[0].SourceText, "zh", "en")
	require.NoError(t, err)
	assert.False(t, hit, "invalidated entry must not serve cache hits")

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ActiveEntries)
	assert.Equal(t, 1, stats.InvalidEntries)

	n, err := s.ClearMemory(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	entries, err = s.ListMemory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemory_UsageCount(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveToMemory(ctx, "常用文本", "zh", "en", "frequent text", "zhipu", nil))

	for i := 0; i < 3; i++ {
		_, hit, err := s.GetCachedTranslation(ctx, "常用文本", "zh", "en")
		require.NoError(t, err)
		require.True(t, hit)
	}

	entries, err := s.ListMemory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].UsageCount)
}
