// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/pkg/errutil"
)

const (
	msgCheckEmail      = "Check your email to verify your account"
	msgResentIfExists  = "If an account exists, we sent a verification email."
	msgResetIfExists   = "If an account exists, we sent a password reset link."
	msgPasswordReset   = "Password updated. You can log in."
	msgPasswordUpdated = "Password updated."
)

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeBody(r, &body, "email", "password", "firstName", "lastName"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	_, err := a.auth.Register(r.Context(), auth.Registration{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeMessage(w, http.StatusCreated, msgCheckEmail)
}

// verifyEmail is the target of the emailed link, so it answers with a
// redirect to the login page rather than JSON.
func (a *api) verifyEmail(w http.ResponseWriter, r *http.Request) {
	links := a.auth.Links()
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, links.Login("error=missing_token"), http.StatusFound)
		return
	}
	if _, err := a.auth.VerifyEmail(r.Context(), token); err != nil {
		if !errors.Is(err, errutil.ErrTokenInvalid) {
			errutil.LogError(a.logger, "email verification failed", err)
		}
		http.Redirect(w, r, links.Login("error=invalid_token"), http.StatusFound)
		return
	}
	http.Redirect(w, r, links.Login("verified=1"), http.StatusFound)
}

func (a *api) resendVerification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body, "email"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.auth.ResendVerification(r.Context(), body.Email); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msgResentIfExists)
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body, "email", "password"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	token, account, err := a.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string   `json:"token"`
		User  userJSON `json:"user"`
	}{token, toUser(account)})
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	account, err := a.auth.Me(r.Context(), auth.ClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User userJSON `json:"user"`
	}{toUser(account)})
}

func (a *api) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body, "email"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.auth.ForgotPassword(r.Context(), body.Email); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msgResetIfExists)
}

func (a *api) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &body, "token", "newPassword"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.auth.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msgPasswordReset)
}

func (a *api) changePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &body, "currentPassword", "newPassword"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	if err := a.auth.ChangePassword(r.Context(), claims, body.CurrentPassword, body.NewPassword); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msgPasswordUpdated)
}

func (a *api) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string  `json:"firstName"`
		LastName  string  `json:"lastName"`
		Email     *string `json:"email"`
	}
	if err := decodeBody(r, &body, "firstName", "lastName"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	account, sent, err := a.auth.UpdateProfile(r.Context(), auth.ClaimsFromContext(r.Context()), auth.ProfileUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
	})
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User                  userJSON `json:"user"`
		EmailVerificationSent bool     `json:"emailVerificationSent,omitempty"`
	}{toUser(account), sent})
}

func (a *api) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.DeleteOwnAccount(r.Context(), auth.ClaimsFromContext(r.Context())); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.admin.ListUsers(r.Context(), auth.ClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	users := make([]adminUserJSON, 0, len(accounts))
	for _, acc := range accounts {
		users = append(users, toAdminUser(acc))
	}
	writeJSON(w, http.StatusOK, struct {
		Users []adminUserJSON `json:"users"`
	}{users})
}

func (a *api) editUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Role      string `json:"role"`
		Status    string `json:"status"`
	}
	if err := decodeBody(r, &body, "firstName", "lastName", "role", "status"); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	account, err := a.admin.EditUser(r.Context(), auth.ClaimsFromContext(r.Context()), id, auth.AccountEdit{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Role:      auth.Role(body.Role),
		Status:    auth.Status(body.Status),
	})
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User userJSON `json:"user"`
	}{toUser(account)})
}

func (a *api) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.admin.DeleteUser(r.Context(), auth.ClaimsFromContext(r.Context()), id); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
