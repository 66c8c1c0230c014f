package session

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfellner/pinnwand/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(keyring.NewArrayKeyring(nil))
}

func TestSetThenRead(t *testing.T) {
	s := newTestStore(t)

	user := model.User{ID: 7, Name: "Anna Berger", Email: "anna@example.com"}
	require.NoError(t, s.Set("tok-123", user))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	got, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, user, got)

	assert.True(t, s.IsAuthenticated())
}

func TestEmptySessionReadsAsAbsent(t *testing.T) {
	s := newTestStore(t)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := s.User()
	require.NoError(t, err)
	assert.Zero(t, user.ID)

	assert.False(t, s.IsAuthenticated())
}

func TestClearRemovesBothAndIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("tok", model.User{ID: 1, Name: "A"}))

	require.NoError(t, s.Clear())

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := s.User()
	require.NoError(t, err)
	assert.Zero(t, user.ID)

	// Clearing again must not fail.
	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
}

func TestSetOverwritesPreviousSession(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("old", model.User{ID: 1, Name: "Old"}))
	require.NoError(t, s.Set("new", model.User{ID: 2, Name: "New"}))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", token)

	user, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, 2, user.ID)
}
