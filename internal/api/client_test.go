package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfellner/pinnwand/internal/feedback"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/session"
)

// newTestClient wires a client against srv with a fresh in-memory
// session store and a long-lived notice center.
func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *session.Store, *feedback.Center) {
	t.Helper()
	sessions := session.New(keyring.NewArrayKeyring(nil))
	notices := feedback.NewCenter(time.Minute)
	client := NewClient(srv.URL, sessions, notices, nil)
	return client, sessions, notices
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, sessions, _ := newTestClient(t, srv)
	require.NoError(t, sessions.Set("tok-99", model.User{ID: 1}))

	require.NoError(t, client.Get(context.Background(), "/dashboard", nil))
	assert.Equal(t, "Bearer tok-99", gotAuth)
}

func TestNoAuthorizationHeaderWithoutSession(t *testing.T) {
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv)
	require.NoError(t, client.Get(context.Background(), "/departments", nil))
	assert.False(t, sawHeader)
}

func TestSuccessMessageBecomesNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Nachricht gespeichert"}`))
	}))
	defer srv.Close()

	client, _, notices := newTestClient(t, srv)
	require.NoError(t, client.Post(context.Background(), "/new-message", map[string]string{}, nil))

	n, ok := notices.Current()
	require.True(t, ok)
	assert.Equal(t, feedback.KindSuccess, n.Kind)
	assert.Equal(t, "Nachricht gespeichert", n.Text)
}

func TestErrorNoticePrefersMessageThenErrorThenFallback(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Titel fehlt","error":"validation"}`, "Titel fehlt"},
		{"error field", `{"error":"validation failed"}`, "validation failed"},
		{"fallback", `{}`, "Etwas ist schiefgelaufen."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, _, notices := newTestClient(t, srv)
			err := client.Post(context.Background(), "/new-message", map[string]string{}, nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
			assert.Equal(t, tc.want, apiErr.Message)

			n, ok := notices.Current()
			require.True(t, ok)
			assert.Equal(t, feedback.KindError, n.Kind)
			assert.Equal(t, tc.want, n.Text)
		})
	}
}

func TestUnauthorizedClearsSessionAndNavigatesToLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token abgelaufen"}`))
	}))
	defer srv.Close()

	client, sessions, _ := newTestClient(t, srv)
	require.NoError(t, sessions.Set("stale", model.User{ID: 3, Name: "B"}))

	var navigatedToLogin bool
	client.OnAuthFailure(func() { navigatedToLogin = true })

	err := client.Get(context.Background(), "/assigned", nil)

	// The error is augmented but never swallowed.
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	token, terr := sessions.Token()
	require.NoError(t, terr)
	assert.Empty(t, token)

	user, uerr := sessions.User()
	require.NoError(t, uerr)
	assert.Zero(t, user.ID)

	assert.True(t, navigatedToLogin)
}

func TestLoginPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "anna@example.com", creds["email"])

		json.NewEncoder(w).Encode(loginResponse{
			Token: "fresh-token",
			User:  model.User{ID: 7, Name: "Anna Berger"},
		})
	}))
	defer srv.Close()

	client, sessions, _ := newTestClient(t, srv)
	user, err := client.Login(context.Background(), "anna@example.com", "geheim")
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)

	token, err := sessions.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.True(t, sessions.IsAuthenticated())
}

func TestBoardQueryEncodesFilters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/assigned", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv)
	_, err := client.Board(context.Background(), model.BoardAssigned, BoardFilter{
		Archived: false,
		Priority: "hoch",
	})
	require.NoError(t, err)

	parsed, perr := url.ParseQuery(gotQuery)
	require.NoError(t, perr)
	assert.Equal(t, "false", parsed.Get("is_archived"))
	assert.Equal(t, "hoch", parsed.Get("priority"))
	assert.Empty(t, parsed.Get("status"))
}

func TestAddCommentReturnsStoredRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/42/comments", r.URL.Path)
		w.Write([]byte(`{"data":{"id":501,"message_id":42,"content":"hello","user":{"id":7,"name":"Anna Berger"}}}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv)
	comment, err := client.AddComment(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, 501, comment.ID)
	assert.Equal(t, 42, comment.MessageID)
	assert.Equal(t, "hello", comment.Content)
}

func TestStoreActivityIncludesAssignee(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store-activities", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv)
	assignee := 12
	require.NoError(t, client.StoreActivity(context.Background(), 42, "hat geteilt mit", &assignee))

	assert.Equal(t, float64(42), got["message_id"])
	assert.Equal(t, "hat geteilt mit", got["action"])
	assert.Equal(t, float64(12), got["assignee_id"])
}
