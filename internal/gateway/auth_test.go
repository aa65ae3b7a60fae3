package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrecruiter/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.BackendConfig{
		BaseURL:           baseURL,
		TimeoutSec:        5,
		BreakerMaxFails:   100,
		BreakerTimeoutSec: 60,
	})
}

func signedToken(t *testing.T, claims map[string]string) string {
	t.Helper()
	raw, err := json.Marshal(claims)
	require.NoError(t, err)
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(raw) + ".c2ln"
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("empty fields never reach the network", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		sess, err := newTestClient(srv.URL).Login(ctx, "", "")

		assert.Nil(t, sess)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "email")
		assert.Contains(t, vErr.Fields, "password")
		assert.Equal(t, int32(0), hits.Load())
	})

	t.Run("decodes display fields from the token payload", func(t *testing.T) {
		token := signedToken(t, map[string]string{"email": "a@b.com", "name": "Ada", "id": "u1"})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/signin", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.com", body["email"])
			assert.Equal(t, "secret123", body["password"])

			json.NewEncoder(w).Encode(map[string]string{"data": token})
		}))
		defer srv.Close()

		sess, err := newTestClient(srv.URL).Login(ctx, "a@b.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, token, sess.Token)
		assert.Equal(t, "Ada", sess.DisplayName)
		assert.Equal(t, "a@b.com", sess.Email)
		assert.Equal(t, "u1", sess.UserID)
	})

	t.Run("malformed token falls back to the email local part", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"data": "not-three-segments"})
		}))
		defer srv.Close()

		sess, err := newTestClient(srv.URL).Login(ctx, "a@b.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "a", sess.DisplayName)
		assert.Equal(t, "a@b.com", sess.Email)
		assert.Equal(t, "not-three-segments", sess.Token)
	})

	t.Run("token with undecodable payload segment falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"data": "aaa.###.ccc"})
		}))
		defer srv.Close()

		sess, err := newTestClient(srv.URL).Login(ctx, "ada.lovelace@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "ada.lovelace", sess.DisplayName)
	})

	t.Run("server-reported failure surfaces the body message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Account not found"})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Login(ctx, "a@b.com", "secret123")

		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, http.StatusBadRequest, sErr.Status)
		assert.Equal(t, "Account not found", sErr.Message)
	})

	t.Run("rejected login keeps the server message not a redirect", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Wrong password"})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Login(ctx, "a@b.com", "wrong")

		assert.NotErrorIs(t, err, ErrUnauthorized)
		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "Wrong password", sErr.Message)
	})

	t.Run("status without a message synthesizes one", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Login(ctx, "a@b.com", "secret123")

		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "server error (502)", sErr.Message)
	})

	t.Run("unparsable success body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Login(ctx, "a@b.com", "secret123")

		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestClient_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("short password is rejected locally", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Register(ctx, "Ada Lovelace", "a@b.com", "short", "short")

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Password must be at least 8 characters", vErr.Fields["password"])
		assert.Equal(t, int32(0), hits.Load())
	})

	t.Run("all violations are collected together", func(t *testing.T) {
		err := newTestClient("http://backend.invalid").Register(ctx, "  ", "not-an-email", "secret123", "different")

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "fullName")
		assert.Contains(t, vErr.Fields, "email")
		assert.Contains(t, vErr.Fields, "confirmPassword")
		assert.NotContains(t, vErr.Fields, "password")
	})

	t.Run("success posts name email password and commits nothing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/signup", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ada Lovelace", body["name"])
			assert.Equal(t, "a@b.com", body["email"])
			assert.Equal(t, "secret123", body["password"])

			w.WriteHeader(http.StatusCreated)
			// A volunteered token must be ignored by the client.
			json.NewEncoder(w).Encode(map[string]string{"token": "ignored"})
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Register(ctx, "Ada Lovelace", "a@b.com", "secret123", "secret123")

		assert.NoError(t, err)
	})

	t.Run("duplicate email surfaces the server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "Email already registered"})
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Register(ctx, "Ada Lovelace", "a@b.com", "secret123", "secret123")

		var sErr *ServerError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "Email already registered", sErr.Message)
	})
}
