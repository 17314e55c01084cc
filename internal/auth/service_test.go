// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/pkg/errutil"
)

func TestService_RegisterVerifyLoginScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.svc.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)
	f.notifier.AssertCalled(t, "SendVerificationLink", mock.Anything, "a@x.com", mock.Anything)
	t1 := f.notifier.lastToken(t)
	assert.True(t, strings.HasPrefix(f.notifier.links[0], "https://api.example.com/auth/verify-email?token="))

	_, _, err = f.svc.Login(ctx, "a@x.com", "Password1")
	errutil.AssertKind(t, err, errutil.KindAuthorization)
	assert.Equal(t, "Email not verified", err.Error())
	errutil.AssertErrorCode(t, err, "EMAIL_NOT_VERIFIED")

	id, err := f.svc.VerifyEmail(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, account.ID, id)

	token, user, err := f.svc.Login(ctx, "a@x.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, user.ID)

	claims, err := f.sessions.Validate(token)
	require.NoError(t, err)
	sub, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, account.ID, sub)
	assert.Equal(t, auth.RoleMember, claims.Role)
	assert.Equal(t, "a@x.com", claims.Email)

	_, err = f.svc.VerifyEmail(ctx, t1)
	errutil.AssertKind(t, err, errutil.KindTokenInvalid)
}

func TestService_RegisterSucceedsWhenMailFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.ExpectedCalls = nil
	f.notifier.On("SendVerificationLink", mock.Anything, "a@x.com", mock.Anything).
		Return(errors.New("smtp: connection refused")).Once()

	account, err := f.svc.Register(context.Background(), registration("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
	f.notifier.AssertExpectations(t)
}

func TestService_RegisterRollsBackOnConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, registration("a@x.com"))
	errutil.AssertKind(t, err, errutil.KindConflict)
	f.notifier.AssertNumberOfCalls(t, "SendVerificationLink", 1)
}

func TestService_LoginRejectsSuspendedWithAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.verifiedAccount(t, "a@x.com")
	require.NoError(t, f.store.Accounts().UpdateAdmin(ctx, account.ID, "Ada", "Lovelace", auth.RoleMember, auth.StatusSuspended))

	_, _, err := f.svc.Login(ctx, "a@x.com", "Password1")
	errutil.AssertKind(t, err, errutil.KindAuthorization)
	assert.NotErrorIs(t, err, errutil.ErrAuthentication)
	errutil.AssertErrorCode(t, err, "ACCOUNT_SUSPENDED")

	_, _, err = f.svc.Login(ctx, "a@x.com", "Wrong1234")
	errutil.AssertKind(t, err, errutil.KindAuthentication)
}

func TestService_ResendVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ResendVerification(ctx, "nobody@x.com"))
	f.notifier.AssertNotCalled(t, "SendVerificationLink", mock.Anything, "nobody@x.com", mock.Anything)

	_, err := f.svc.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)
	require.NoError(t, f.svc.ResendVerification(ctx, "A@X.com"))
	f.notifier.AssertNumberOfCalls(t, "SendVerificationLink", 2)

	_, err = f.svc.VerifyEmail(ctx, f.notifier.lastToken(t))
	require.NoError(t, err)

	require.NoError(t, f.svc.ResendVerification(ctx, "a@x.com"))
	f.notifier.AssertNumberOfCalls(t, "SendVerificationLink", 2)
}

func TestService_ForgotResetScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifiedAccount(t, "a@x.com")

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@x.com"))
	f.notifier.AssertNotCalled(t, "SendPasswordResetLink", mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))
	f.notifier.AssertCalled(t, "SendPasswordResetLink", mock.Anything, "a@x.com", mock.Anything)
	t2 := f.notifier.lastToken(t)
	assert.True(t, strings.HasPrefix(f.notifier.links[len(f.notifier.links)-1], "https://app.example.com/reset-password?token="))

	t.Run("weak password leaves the token unused", func(t *testing.T) {
		err := f.svc.ResetPassword(ctx, t2, "weak")
		errutil.AssertKind(t, err, errutil.KindValidation)
	})

	require.NoError(t, f.svc.ResetPassword(ctx, t2, "Newpassword1"))

	_, _, err := f.svc.Login(ctx, "a@x.com", "Newpassword1")
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, t2, "Another1pass")
	errutil.AssertKind(t, err, errutil.KindTokenInvalid)
}

func TestService_MeAndDeleteOwnAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.verifiedAccount(t, "a@x.com")
	token, _, err := f.svc.Login(ctx, "a@x.com", "Password1")
	require.NoError(t, err)
	claims, err := f.sessions.Validate(token)
	require.NoError(t, err)

	me, err := f.svc.Me(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, account.ID, me.ID)

	_, err = f.svc.Me(ctx, nil)
	errutil.AssertKind(t, err, errutil.KindAuthentication)

	require.NoError(t, f.svc.DeleteOwnAccount(ctx, claims))

	_, err = f.svc.Me(ctx, claims)
	errutil.AssertKind(t, err, errutil.KindNotFound)
	err = f.svc.DeleteOwnAccount(ctx, claims)
	errutil.AssertKind(t, err, errutil.KindNotFound)
}

func TestService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifiedAccount(t, "a@x.com")
	token, _, err := f.svc.Login(ctx, "a@x.com", "Password1")
	require.NoError(t, err)
	claims, err := f.sessions.Validate(token)
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, claims, "Wrong1234", "Newpassword1")
	errutil.AssertKind(t, err, errutil.KindAuthentication)

	require.NoError(t, f.svc.ChangePassword(ctx, claims, "Password1", "Newpassword1"))
	_, _, err = f.svc.Login(ctx, "a@x.com", "Newpassword1")
	require.NoError(t, err)

	_, err = f.sessions.Validate(token)
	assert.NoError(t, err, "issued sessions stay valid after a password change")
}

func TestService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifiedAccount(t, "a@x.com")
	f.verifiedAccount(t, "b@x.com")
	token, _, err := f.svc.Login(ctx, "a@x.com", "Password1")
	require.NoError(t, err)
	claims, err := f.sessions.Validate(token)
	require.NoError(t, err)

	t.Run("names only", func(t *testing.T) {
		account, sent, err := f.svc.UpdateProfile(ctx, claims, auth.ProfileUpdate{FirstName: " Grace ", LastName: "Hopper"})
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Equal(t, "Grace", account.FirstName)
		assert.True(t, account.IsVerified())
	})

	t.Run("blank names are rejected", func(t *testing.T) {
		_, _, err := f.svc.UpdateProfile(ctx, claims, auth.ProfileUpdate{FirstName: "", LastName: "Hopper"})
		errutil.AssertKind(t, err, errutil.KindValidation)
	})

	t.Run("taken email is a conflict and changes nothing", func(t *testing.T) {
		email := "B@x.com"
		_, _, err := f.svc.UpdateProfile(ctx, claims, auth.ProfileUpdate{FirstName: "Changed", LastName: "Name", Email: &email})
		errutil.AssertKind(t, err, errutil.KindConflict)
		assert.Equal(t, "Email already in use", err.Error())

		me, err := f.svc.Me(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, "Grace", me.FirstName)
	})

	t.Run("unchanged email sends nothing", func(t *testing.T) {
		email := "a@x.com"
		_, sent, err := f.svc.UpdateProfile(ctx, claims, auth.ProfileUpdate{FirstName: "Grace", LastName: "Hopper", Email: &email})
		require.NoError(t, err)
		assert.False(t, sent)
	})

	t.Run("new email loses verification and gets a link", func(t *testing.T) {
		email := "grace@x.com"
		account, sent, err := f.svc.UpdateProfile(ctx, claims, auth.ProfileUpdate{FirstName: "Grace", LastName: "Hopper", Email: &email})
		require.NoError(t, err)
		assert.True(t, sent)
		assert.Equal(t, "grace@x.com", account.Email)
		assert.False(t, account.IsVerified())
		f.notifier.AssertCalled(t, "SendVerificationLink", mock.Anything, "grace@x.com", mock.Anything)

		_, err = f.svc.VerifyEmail(ctx, f.notifier.lastToken(t))
		require.NoError(t, err)
		_, _, err = f.svc.Login(ctx, "grace@x.com", "Password1")
		require.NoError(t, err)
	})
}

func TestService_SessionForDeletedAccountStaysValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.verifiedAccount(t, "a@x.com")
	token, _, err := f.svc.Login(ctx, "a@x.com", "Password1")
	require.NoError(t, err)

	require.NoError(t, f.store.Accounts().Delete(ctx, account.ID))

	claims, err := f.sessions.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), claims.Subject)
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	_, err := auth.NewService(auth.ServiceConfig{})
	require.Error(t, err)

	_, err = auth.NewAdminService(nil, nil)
	require.Error(t, err)
}

func TestLinks(t *testing.T) {
	links := auth.Links{APIURL: "https://api.example.com/", FrontendURL: "https://app.example.com/"}

	assert.Equal(t, "https://api.example.com/auth/verify-email?token=abc", links.VerifyEmail("abc"))
	assert.Equal(t, "https://app.example.com/reset-password?token=abc", links.ResetPassword("abc"))
	assert.Equal(t, "https://app.example.com/login?verified=1", links.Login("verified=1"))
}
