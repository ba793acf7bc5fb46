package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"formpilot/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}
	return store
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := newTestStore(t)
	return NewClient(srv.URL, store), store
}

func TestBearerHeaderAttachedExactly(t *testing.T) {
	var gotAuth string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"1","username":"alice","email":"a@b.c","is_active":true}`))
	}))

	if err := store.SetCredentials("tok123", session.User{ID: "7", Username: "alice"}); err != nil {
		t.Fatalf("SetCredentials failed: %v", err)
	}
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("expected Authorization 'Bearer tok123', got %q", gotAuth)
	}
}

func TestNoBearerHeaderWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	var hadHeader bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadHeader = r.Header["Authorization"]
		w.Write([]byte(`{"access_token":"t","user_id":"1","username":"u"}`))
	}))

	if _, err := client.Login(context.Background(), "u", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if hadHeader {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestUnauthorizedClearsCredentialsAndFiresHook(t *testing.T) {
	// 401 must wipe local state and invoke the hook regardless of endpoint.
	endpoints := []func(c *Client) error{
		func(c *Client) error { _, err := c.Me(context.Background()); return err },
		func(c *Client) error { _, err := c.GetProfile(context.Background()); return err },
		func(c *Client) error { _, err := c.History(context.Background(), 0, 20); return err },
		func(c *Client) error { return c.DeleteMapping(context.Background(), "m1") },
	}

	for i, call := range endpoints {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Could not validate credentials"}`))
		}))
		store := newTestStore(t)
		if err := store.SetCredentials("stale", session.User{ID: "1", Username: "x"}); err != nil {
			t.Fatalf("SetCredentials failed: %v", err)
		}

		hookFired := false
		client := NewClient(srv.URL, store, WithUnauthenticatedHook(func() { hookFired = true }))

		err := call(client)
		srv.Close()

		if err == nil {
			t.Fatalf("endpoint %d: expected error", i)
		}
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("endpoint %d: expected ErrUnauthenticated, got %v", i, err)
		}
		if store.Token() != "" {
			t.Errorf("endpoint %d: token not cleared", i)
		}
		if store.User() != nil {
			t.Errorf("endpoint %d: cached user not cleared", i)
		}
		if !hookFired {
			t.Errorf("endpoint %d: unauthenticated hook not fired", i)
		}
	}
}

func TestFailedLoginKeepsHookQuiet(t *testing.T) {
	// A wrong-password login is a 401 with no session behind it: the error
	// surfaces verbatim, but there is nothing to wipe and no hook to fire.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))
	defer srv.Close()

	store := newTestStore(t)
	hookFired := false
	client := NewClient(srv.URL, store, WithUnauthenticatedHook(func() { hookFired = true }))

	_, err := client.Login(context.Background(), "alice", "wrongpass1")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Incorrect username or password" {
		t.Errorf("expected verbatim detail, got %q", err.Error())
	}
	if hookFired {
		t.Error("unauthenticated hook should not fire for a failed login")
	}
}

func TestErrorMessageIsBackendDetailVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Username already registered"}`))
	}))

	_, err := client.Signup(context.Background(), SignupRequest{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Username already registered" {
		t.Errorf("expected verbatim detail, got %q", err.Error())
	}

	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if re.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", re.Status)
	}
}

func TestErrorMessageWithoutDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"not the field you want"}`))
	}))

	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Request failed with status 409" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestUnparseableBodySynthesizesServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream exploded</html>"))
	}))

	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Server error (502)" {
		t.Errorf("expected 'Server error (502)', got %q", err.Error())
	}
}

func TestTransportErrorsPropagateUnmodified(t *testing.T) {
	store := newTestStore(t)
	// Nothing listens here; the dial fails at the transport layer.
	client := NewClient("http://127.0.0.1:1", store)

	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	var re *RequestError
	if errors.As(err, &re) {
		t.Errorf("transport failure should not be a RequestError: %v", err)
	}
}

func TestGetProfileMissingIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Profile not found"}`))
	}))

	profile, err := client.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("expected nil error for missing profile, got %v", err)
	}
	if profile != nil {
		t.Errorf("expected nil profile, got %+v", profile)
	}
}

func TestContentTypeSetOnlyWithBody(t *testing.T) {
	var postCT, getCT string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			postCT = r.Header.Get("Content-Type")
			w.Write([]byte(`{"access_token":"t","user_id":"1","username":"u"}`))
		default:
			getCT = r.Header.Get("Content-Type")
			w.Write([]byte(`{"id":"1","username":"u","email":"e","is_active":true}`))
		}
	}))

	if _, err := client.Login(context.Background(), "u", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if postCT != "application/json" {
		t.Errorf("expected json content type on POST, got %q", postCT)
	}
	if getCT != "" {
		t.Errorf("expected no content type on GET, got %q", getCT)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	var first, second string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first == "" {
			first = r.Header.Get("X-Request-ID")
		} else {
			second = r.Header.Get("X-Request-ID")
		}
		w.Write([]byte(`{"id":"1","username":"u","email":"e","is_active":true}`))
	}))

	ctx := context.Background()
	if _, err := client.Me(ctx); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if _, err := client.Me(ctx); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if first == "" || second == "" {
		t.Fatal("expected X-Request-ID on every request")
	}
	if first == second {
		t.Error("expected a fresh correlation id per request")
	}
}
