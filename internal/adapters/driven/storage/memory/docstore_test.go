package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

func newDocument(id, ownerID string, createdAt time.Time) *domain.Document {
	return &domain.Document{
		ID:        id,
		OwnerID:   ownerID,
		FileName:  id + ".txt",
		DocType:   domain.DocTypeGeneral,
		RawText:   "body of " + id,
		Status:    domain.StatusProcessing,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestDocumentStore_CreateGetDelete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := newDocument("doc-1", "owner-1", time.Now())
	require.NoError(t, store.CreateDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, domain.StatusProcessing, got.Status)

	// Returned copy must not alias the stored document.
	got.Status = domain.StatusFailed
	again, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, again.Status)

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
	_, err = store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.DeleteDocument(ctx, "doc-1"))
}

func TestDocumentStore_ListDocuments(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.CreateDocument(ctx, newDocument("old", "owner-1", base)))
	require.NoError(t, store.CreateDocument(ctx, newDocument("new", "owner-1", base.Add(time.Hour))))
	require.NoError(t, store.CreateDocument(ctx, newDocument("theirs", "owner-2", base)))

	list, err := store.ListDocuments(ctx, "owner-1")
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestDocumentStore_PartialUpdates(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.CreateDocument(ctx, newDocument("doc-1", "owner-1", time.Now())))

	require.NoError(t, store.SetFastAnalysis(ctx, "doc-1", json.RawMessage(`{"summary":"ok"}`), domain.StatusCompleted))
	require.NoError(t, store.SetDeepAnalysis(ctx, "doc-1", &domain.DeepAnalysis{
		Results: map[string]domain.CapabilityResult{
			domain.CapabilityDocumentAnalyzer: {Payload: domain.EmptyPayload},
		},
	}))
	require.NoError(t, store.SetIndexState(ctx, "doc-1", 7))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"ok"}`, string(got.FastAnalysis))
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.DeepAnalysis)
	assert.True(t, got.Indexed)
	assert.Equal(t, 7, got.ChunkCount)

	t.Run("missing document", func(t *testing.T) {
		assert.ErrorIs(t, store.SetFastAnalysis(ctx, "ghost", domain.EmptyPayload, domain.StatusFailed), domain.ErrNotFound)
		assert.ErrorIs(t, store.SetDeepAnalysis(ctx, "ghost", &domain.DeepAnalysis{}), domain.ErrNotFound)
		assert.ErrorIs(t, store.SetIndexState(ctx, "ghost", 1), domain.ErrNotFound)
	})
}

func TestDocumentStore_ConcurrentWriters(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", i)
			_ = store.CreateDocument(ctx, newDocument(id, "owner-1", time.Now()))
			_ = store.SetIndexState(ctx, id, i)
		}(i)
	}
	wg.Wait()

	list, err := store.ListDocuments(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, list, n)
}
