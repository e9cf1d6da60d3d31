package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcward/clack/internal/backend"
	"github.com/marcward/clack/internal/domain"
)

func TestAPI_GetMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/messages/u2", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"m1","content":"hello","senderId":"u2","receiverId":"u1","kind":"text"},
			{"id":"m2","content":"hi","senderId":"u1","receiverId":"u2","kind":"text"}
		]`))
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")
	msgs, err := api.GetMessages(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "u2", msgs[0].SenderID)
}

func TestAPI_GetMessagesEscapesPeerID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/messages/u2%2F..%2Fadmin", r.URL.EscapedPath())

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")
	_, err := api.GetMessages(context.Background(), "u2/../admin")
	require.NoError(t, err)
}

func TestAPI_SendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/messages", r.URL.Path)

		var req backend.SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Content)
		assert.Equal(t, domain.KindText, req.Kind)
		assert.Equal(t, "u2", req.ReceiverID)

		// Echo back with server-assigned id.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.Message{
			ID:         "m99",
			Content:    req.Content,
			SenderID:   "u1",
			ReceiverID: req.ReceiverID,
			Kind:       req.Kind,
		})
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")
	msg, err := api.SendMessage(context.Background(), backend.SendRequest{
		Content:    "hello",
		Kind:       domain.KindText,
		ReceiverID: "u2",
	})
	require.NoError(t, err)
	assert.Equal(t, "m99", msg.ID)
}

func TestAPI_GetUsersAndMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/users":
			w.Write([]byte(`[{"id":"u2","username":"bob"},{"id":"u3","username":"carol"}]`))
		case "/api/users/me":
			w.Write([]byte(`{"id":"u1","username":"alice"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")

	users, err := api.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)

	me, err := api.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestAPI_RequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")
	_, err := api.GetMessages(context.Background(), "u2")
	require.Error(t, err)

	var reqErr *backend.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
	assert.Equal(t, "boom", reqErr.Body)
}

func TestAPI_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(backend.UploadResult{
			FileRef:  "files/abc",
			FileName: header.Filename,
			FileSize: header.Size,
		})
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")
	res, err := api.Upload(context.Background(), "notes.txt", strings.NewReader("file body"))
	require.NoError(t, err)
	assert.Equal(t, "files/abc", res.FileRef)
	assert.Equal(t, "notes.txt", res.FileName)
	assert.Equal(t, int64(len("file body")), res.FileSize)
}

func TestAPI_UploadAvatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/profile/upload", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"avatarRef":"avatars/u1.png"}`))
	}))
	defer srv.Close()

	api := backend.NewAPI(srv.URL, "tok123")
	ref, err := api.UploadAvatar(context.Background(), "me.png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1.png", ref)
}

func TestGIFClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "cat gif", r.URL.Query().Get("q"))
		assert.Equal(t, "key1", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":"g1","previewRef":"p1","fullRef":"f1"}]}`))
	}))
	defer srv.Close()

	gifs := backend.NewGIFClient(srv.URL, "key1")
	results, err := gifs.Search(context.Background(), "cat gif")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "g1", results[0].ID)
}

func TestGIFClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gifs := backend.NewGIFClient(srv.URL, "key1")
	_, err := gifs.Search(context.Background(), "cat")
	require.Error(t, err)

	var reqErr *backend.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusTooManyRequests, reqErr.Status)
}
