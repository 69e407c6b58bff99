package chatlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redteamshop/shopassist/internal/domain/entities"
)

func newTestLog(t *testing.T) *SQLiteLog {
	t.Helper()
	log, err := NewSQLiteLog(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestSQLiteLog_RecordAndGet(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	ex := entities.ChatExchange{
		SessionID:  "sess-1",
		UserID:     "user-1",
		Query:      "tell me about the cap",
		Response:   "It has an adjustable strap.",
		ContextIDs: []string{"1", "2"},
		Model:      "mistral",
		Timestamp:  time.Now().UTC(),
	}
	require.NoError(t, log.Record(ctx, ex))

	got, err := log.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, ex.UserID, got.UserID)
	assert.Equal(t, ex.Query, got.Query)
	assert.Equal(t, ex.Response, got.Response)
	assert.Equal(t, ex.ContextIDs, got.ContextIDs)
	assert.Equal(t, ex.Model, got.Model)
}

func TestSQLiteLog_SessionHoldsOnlyLatestExchange(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	first := entities.ChatExchange{
		SessionID: "sess-1",
		UserID:    "user-1",
		Query:     "first question",
		Response:  "first answer",
		Model:     "mistral",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, log.Record(ctx, first))

	second := first
	second.Query = "second question"
	second.Response = "second answer"
	second.ContextIDs = []string{"5"}
	require.NoError(t, log.Record(ctx, second))

	got, err := log.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "second question", got.Query)
	assert.Equal(t, "second answer", got.Response)
	assert.Equal(t, []string{"5"}, got.ContextIDs)
}

func TestSQLiteLog_GetUnknownSession(t *testing.T) {
	log := newTestLog(t)

	_, err := log.Get(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLiteLog_SessionsAreIndependent(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b"} {
		require.NoError(t, log.Record(ctx, entities.ChatExchange{
			SessionID: sid,
			UserID:    "user-" + sid,
			Query:     "q-" + sid,
			Response:  "r-" + sid,
			Model:     "mistral",
			Timestamp: time.Now().UTC(),
		}))
	}

	a, err := log.Get(ctx, "a")
	require.NoError(t, err)
	b, err := log.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "q-a", a.Query)
	assert.Equal(t, "q-b", b.Query)
}
