package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/store"
	"github.com/mfellner/pinnwand/tests/testutil"
)

func TestAddAndListNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"erste", "zweite", "dritte"} {
		require.NoError(t, s.AddNotification(ctx, model.Notification{
			MessageID: 42,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "dritte", got[0].Text)
	assert.Equal(t, "erste", got[2].Text)

	for _, n := range got {
		assert.NotEmpty(t, n.ID, "missing id is filled in")
		assert.False(t, n.Read)
		assert.Equal(t, 42, n.MessageID)
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddNotification(ctx, model.Notification{
			MessageID: i, Text: "n",
		}))
	}

	count, err := s.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, s.MarkAllRead(ctx))

	count, err = s.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	for _, n := range got {
		assert.True(t, n.Read)
	}
}

func TestDeleteNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	n := model.Notification{ID: "keep-or-kill", MessageID: 1, Text: "weg"}
	require.NoError(t, s.AddNotification(ctx, n))
	require.NoError(t, s.AddNotification(ctx, model.Notification{MessageID: 2, Text: "bleibt"}))

	require.NoError(t, s.DeleteNotification(ctx, "keep-or-kill"))

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bleibt", got[0].Text)

	// Deleting an unknown id is not an error.
	require.NoError(t, s.DeleteNotification(ctx, "missing"))
}

var _ store.Store = (*store.SQLiteStore)(nil)
