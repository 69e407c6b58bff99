package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

func rec(ref, content string, embedding []float32) ports.Record {
	return ports.Record{
		Ref:       ref,
		Content:   content,
		Metadata:  entities.DocumentMetadata{Title: content},
		Embedding: embedding,
	}
}

func TestInMemoryStore_SearchOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Add(ctx, rec("a", "far", []float32{0, 1, 0})))
	require.NoError(t, store.Add(ctx, rec("b", "near", []float32{1, 0, 0})))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Content)
	assert.Equal(t, "far", results[1].Content)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestInMemoryStore_TiesBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	// Identical embeddings, identical distances.
	require.NoError(t, store.Add(ctx, rec("first", "first", []float32{1, 0})))
	require.NoError(t, store.Add(ctx, rec("second", "second", []float32{1, 0})))

	results, err := store.Search(ctx, []float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
}

func TestInMemoryStore_SearchEmpty(t *testing.T) {
	store := NewInMemoryStore()
	results, err := store.Search(context.Background(), []float32{1, 0}, 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryStore_TruncatesToK(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, rec(string(rune('a'+i)), "doc", []float32{1, 0})))
	}

	results, err := store.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestInMemoryStore_ReplaceSwapsContents(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Add(ctx, rec("old", "old", []float32{1, 0})))

	require.NoError(t, store.Replace(ctx, []ports.Record{
		rec("new1", "new1", []float32{1, 0}),
		rec("new2", "new2", []float32{0, 1}),
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "old", r.Content)
	}
}

func TestInMemoryStore_ReplaceNilEmpties(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Add(ctx, rec("a", "doc", []float32{1, 0})))

	require.NoError(t, store.Replace(ctx, nil))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, CosineDistance([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 1, CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs get the maximum unit distance.
	assert.Equal(t, 1.0, CosineDistance([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 1.0, CosineDistance(nil, nil))
	assert.Equal(t, 1.0, CosineDistance([]float32{0, 0}, []float32{1, 0}))
}
