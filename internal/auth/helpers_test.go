// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/memstore"
)

// plainHasher stands in for argon2id where hashing cost is irrelevant.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "plain$"+password, nil
}

func (plainHasher) NeedsUpgrade(string) bool { return false }

// notifierMock records delivered links.
type notifierMock struct {
	mock.Mock

	mu    sync.Mutex
	links []string
}

func (m *notifierMock) SendVerificationLink(ctx context.Context, to, link string) error {
	m.record(link)
	return m.Called(ctx, to, link).Error(0)
}

func (m *notifierMock) SendPasswordResetLink(ctx context.Context, to, link string) error {
	m.record(link)
	return m.Called(ctx, to, link).Error(0)
}

func (m *notifierMock) record(link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
}

// lastToken returns the token query parameter of the last delivered link.
func (m *notifierMock) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links, "no link delivered")
	u, err := url.Parse(m.links[len(m.links)-1])
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.Len(t, token, 2*auth.TokenBytes)
	return token
}

type fixture struct {
	store    *memstore.Store
	creds    *auth.Credentials
	tokens   *auth.TokenService
	sessions *auth.SessionIssuer
	svc      *auth.Service
	admin    *auth.AdminService
	notifier *notifierMock

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		notifier: &notifierMock{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}

	var err error
	f.creds, err = auth.NewCredentials(f.store.Accounts(), plainHasher{}, nil)
	require.NoError(t, err)

	f.tokens, err = auth.NewTokenService(f.store.Accounts(), f.store.VerificationTokens(), f.store.PasswordResetTokens(), f.store)
	require.NoError(t, err)
	f.tokens.SetClock(clock)

	f.sessions = newIssuer(t)
	f.sessions.SetClock(clock)

	f.svc, err = auth.NewService(auth.ServiceConfig{
		Accounts:    f.store.Accounts(),
		Credentials: f.creds,
		Tokens:      f.tokens,
		Sessions:    f.sessions,
		Transactor:  f.store,
		Notifier:    f.notifier,
		Links:       auth.Links{APIURL: "https://api.example.com/", FrontendURL: "https://app.example.com"},
	})
	require.NoError(t, err)

	f.admin, err = auth.NewAdminService(f.store.Accounts(), nil)
	require.NoError(t, err)

	f.notifier.On("SendVerificationLink", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("SendPasswordResetLink", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func registration(email string) auth.Registration {
	return auth.Registration{
		Email:     email,
		Password:  "Password1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

// verifiedAccount registers email, redeems its verification link and
// returns the account.
func (f *fixture) verifiedAccount(t *testing.T, email string) *auth.Account {
	t.Helper()
	ctx := context.Background()
	account, err := f.svc.Register(ctx, registration(email))
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, f.notifier.lastToken(t))
	require.NoError(t, err)
	return account
}

// adminClaims returns session claims for a fresh verified admin.
func (f *fixture) adminClaims(t *testing.T, email string) (*auth.Account, *auth.Claims) {
	t.Helper()
	ctx := context.Background()
	account := f.verifiedAccount(t, email)
	require.NoError(t, f.store.Accounts().UpdateAdmin(ctx, account.ID, account.FirstName, account.LastName, auth.RoleAdmin, auth.StatusActive))
	token, _, err := f.svc.Login(ctx, strings.ToUpper(email), "Password1")
	require.NoError(t, err)
	claims, err := f.sessions.Validate(token)
	require.NoError(t, err)
	return account, claims
}
