package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPProviderSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "service-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"user":         map[string]string{"id": "sub-1"},
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "service-key", time.Second, nil)

	sess, err := p.SignInWithPassword(context.Background(), "x@y.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, Session{SubjectID: "sub-1", AccessToken: "tok-1"}, sess)

	_, err = p.SignInWithPassword(context.Background(), "x@y.com", "wrong")
	require.ErrorIs(t, err, ErrRejected)
}

func TestHTTPProviderSignupConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"msg":"User already registered"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "service-key", time.Second, nil)
	_, err := p.SignUp(context.Background(), "x@y.com", "secret1")
	require.ErrorIs(t, err, ErrExists)
}

func TestHTTPProviderServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "service-key", time.Second, nil)
	_, err := p.ValidateToken(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPProviderTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	p := NewHTTPProvider(srv.URL, "service-key", 50*time.Millisecond, nil)
	_, err := p.ValidateToken(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPProviderSignOutAndDelete(t *testing.T) {
	var gotDelete string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/logout":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete:
			gotDelete = r.URL.Path
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "service-key", time.Second, nil)
	require.NoError(t, p.SignOut(context.Background(), "tok-1"))
	require.NoError(t, p.DeleteUser(context.Background(), "sub-1"))
	require.Equal(t, "/admin/users/sub-1", gotDelete)
}
