package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrecruiter/internal/config"
)

func TestClient_UploadCV(t *testing.T) {
	ctx := context.Background()

	t.Run("sends multipart body with bearer header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cvs/upload", r.URL.Path)
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseMultipartForm(10<<20))
			assert.Equal(t, "Frontend Developer", r.FormValue("appliedJob"))
			assert.Equal(t, "u1", r.FormValue("userId"))

			file, header, err := r.FormFile("cv")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "cv.pdf", header.Filename)
			assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"matchScore": 0.85},
			})
		}))
		defer srv.Close()

		raw, err := newTestClient(srv.URL).UploadCV(ctx, "tok-123", strings.NewReader("%PDF-1.4"), "cv.pdf", "Frontend Developer", "u1")

		require.NoError(t, err)
		assert.Contains(t, string(raw), "matchScore")
	})

	t.Run("success flag false surfaces the message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Could not extract text",
			})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).UploadCV(ctx, "tok-123", strings.NewReader("x"), "cv.pdf", "QA", "")

		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "Could not extract text", sErr.Message)
	})

	t.Run("success without data is an unrecognized payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).UploadCV(ctx, "tok-123", strings.NewReader("x"), "cv.pdf", "QA", "")

		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "Analysis failed to return valid data", sErr.Message)
	})

	t.Run("expired credential maps to ErrUnauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).UploadCV(ctx, "stale", strings.NewReader("x"), "cv.pdf", "QA", "")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestClient_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cvs/abc-123", r.URL.Path)
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"matchScore": 0.5}})
		}))
		defer srv.Close()

		raw, err := newTestClient(srv.URL).FetchAnalysis(ctx, "tok-123", "abc-123")

		require.NoError(t, err)
		assert.Contains(t, string(raw), "matchScore")
	})

	t.Run("latest", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cvs/upload", r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)
			w.Write([]byte(`{"matchScore":42}`))
		}))
		defer srv.Close()

		raw, err := newTestClient(srv.URL).FetchLatest(ctx, "tok-123")

		require.NoError(t, err)
		assert.JSONEq(t, `{"matchScore":42}`, string(raw))
	})

	t.Run("expired credential maps to ErrUnauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchLatest(ctx, "stale")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("server failure keeps the body message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "storage offline"})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchLatest(ctx, "tok-123")

		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "storage offline", sErr.Message)
	})
}

func TestClient_BreakerOpensAfterConsecutiveTransportFailures(t *testing.T) {
	// Point at a server that is already gone so every call is a transport failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(config.BackendConfig{
		BaseURL:           srv.URL,
		TimeoutSec:        1,
		BreakerMaxFails:   2,
		BreakerTimeoutSec: 60,
	})
	ctx := context.Background()

	for range 2 {
		_, err := client.FetchLatest(ctx, "tok-123")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	_, err := client.FetchLatest(ctx, "tok-123")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
