// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/memstore"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/web"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// plainHasher stands in for argon2id where hashing cost is irrelevant.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "plain$"+password, nil
}

func (plainHasher) NeedsUpgrade(string) bool { return false }

// linkRecorder is a Notifier that keeps every link it is asked to send.
type linkRecorder struct {
	mu    sync.Mutex
	links []string
}

func (n *linkRecorder) SendVerificationLink(_ context.Context, _, link string) error {
	n.record(link)
	return nil
}

func (n *linkRecorder) SendPasswordResetLink(_ context.Context, _, link string) error {
	n.record(link)
	return nil
}

func (n *linkRecorder) record(link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links = append(n.links, link)
}

func (n *linkRecorder) lastToken(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.links, "no link sent")
	u, err := url.Parse(n.links[len(n.links)-1])
	require.NoError(t, err)
	return u.Query().Get("token")
}

// observation is one call to Observe.
type observation struct {
	method string
	route  string
	status int
}

type observerStub struct {
	mu  sync.Mutex
	obs []observation
}

func (o *observerStub) Observe(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.obs = append(o.obs, observation{method, route, status})
}

func (o *observerStub) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.obs[len(o.obs)-1]
}

type harness struct {
	store    *memstore.Store
	sessions *auth.SessionIssuer
	notifier *linkRecorder
	observer *observerStub
	handler  http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:    memstore.New(),
		notifier: &linkRecorder{},
		observer: &observerStub{},
	}

	creds, err := auth.NewCredentials(h.store.Accounts(), plainHasher{}, nil)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(h.store.Accounts(), h.store.VerificationTokens(), h.store.PasswordResetTokens(), h.store)
	require.NoError(t, err)
	h.sessions, err = auth.NewSessionIssuer(testSecret, "gamenight-test", time.Hour)
	require.NoError(t, err)

	svc, err := auth.NewService(auth.ServiceConfig{
		Accounts:    h.store.Accounts(),
		Credentials: creds,
		Tokens:      tokens,
		Sessions:    h.sessions,
		Transactor:  h.store,
		Notifier:    h.notifier,
		Links:       auth.Links{APIURL: "http://api.test", FrontendURL: "http://app.test"},
	})
	require.NoError(t, err)
	admin, err := auth.NewAdminService(h.store.Accounts(), nil)
	require.NoError(t, err)
	sched, err := schedule.NewService(h.store.Venues(), h.store.Games(), h.store.Standings(), nil)
	require.NoError(t, err)
	signups, err := schedule.NewSignupService(h.store.Games(), h.store.Signups(), nil)
	require.NoError(t, err)

	h.handler, err = web.NewHandler(web.Config{
		Auth:        svc,
		Admin:       admin,
		Sessions:    h.sessions,
		Schedule:    sched,
		Signups:     signups,
		Observer:    h.observer,
		CORSOrigins: []string{"http://localhost:*", "https://*.gamenight.dev"},
	})
	require.NoError(t, err)
	return h
}

// account stores a verified account with role and returns it with a session
// token.
func (h *harness) account(t *testing.T, email string, role auth.Role) (*auth.Account, string) {
	t.Helper()
	now := time.Now().UTC()
	a := &auth.Account{
		ID:              ulid.Make(),
		Email:           email,
		PasswordHash:    "plain$Password1",
		FirstName:       "Test",
		LastName:        "User",
		Role:            role,
		Status:          auth.StatusActive,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, h.store.Accounts().Create(context.Background(), a))
	token, _, err := h.sessions.Issue(a)
	require.NoError(t, err)
	return a, token
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the response body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type body = map[string]any
