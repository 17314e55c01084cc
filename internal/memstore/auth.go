// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
)

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(ctx context.Context, account *auth.Account) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.accounts[account.ID]; ok {
			return oops.Code("ACCOUNT_CREATE_FAILED").With("id", account.ID.String()).Errorf("duplicate account id")
		}
		if emailTaken(st, account.Email, account.ID) {
			return oops.Code("ACCOUNT_EMAIL_TAKEN").With("email", account.Email).Wrap(auth.ErrEmailTaken)
		}
		st.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepo) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	var out *auth.Account
	err := r.s.do(ctx, func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return accountNotFound(id)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var out *auth.Account
	err := r.s.do(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Email == email {
				out = &a
				return nil
			}
		}
		return oops.Code("ACCOUNT_NOT_FOUND").With("email", email).Wrap(auth.ErrAccountNotFound)
	})
	return out, err
}

func (r *accountRepo) List(ctx context.Context) ([]*auth.Account, error) {
	out := make([]*auth.Account, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, a := range st.accounts {
			out = append(out, &a)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *auth.Account) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return b.ID.Compare(a.ID)
	})
	return out, err
}

func (r *accountRepo) UpdateProfile(ctx context.Context, id ulid.ULID, firstName, lastName string) error {
	return r.update(ctx, id, func(_ *state, a *auth.Account) error {
		a.FirstName, a.LastName = firstName, lastName
		return nil
	})
}

func (r *accountRepo) UpdateEmail(ctx context.Context, id ulid.ULID, email string) error {
	return r.update(ctx, id, func(st *state, a *auth.Account) error {
		if emailTaken(st, email, id) {
			return oops.Code("ACCOUNT_EMAIL_TAKEN").With("email", email).Wrap(auth.ErrEmailTaken)
		}
		a.Email = email
		a.EmailVerifiedAt = nil
		return nil
	})
}

func (r *accountRepo) UpdateAdmin(ctx context.Context, id ulid.ULID, firstName, lastName string, role auth.Role, status auth.Status) error {
	return r.update(ctx, id, func(_ *state, a *auth.Account) error {
		a.FirstName, a.LastName = firstName, lastName
		a.Role, a.Status = role, status
		return nil
	})
}

func (r *accountRepo) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return r.update(ctx, id, func(_ *state, a *auth.Account) error {
		a.PasswordHash = passwordHash
		return nil
	})
}

func (r *accountRepo) MarkEmailVerified(ctx context.Context, id ulid.ULID, at time.Time) error {
	return r.update(ctx, id, func(_ *state, a *auth.Account) error {
		a.EmailVerifiedAt = &at
		return nil
	})
}

// Delete removes the account and cascades to its tokens, signups and
// standings.
func (r *accountRepo) Delete(ctx context.Context, id ulid.ULID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.accounts[id]; !ok {
			return accountNotFound(id)
		}
		delete(st.accounts, id)
		deleteWhere(st.verifications, func(t auth.VerificationToken) bool { return t.AccountID == id })
		deleteWhere(st.resets, func(t auth.PasswordResetToken) bool { return t.AccountID == id })
		deleteWhere(st.signups, func(s schedule.Signup) bool { return s.AccountID == id })
		for k := range st.standings {
			if k.accountID == id {
				delete(st.standings, k)
			}
		}
		return nil
	})
}

func (r *accountRepo) update(ctx context.Context, id ulid.ULID, fn func(st *state, a *auth.Account) error) error {
	return r.s.do(ctx, func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return accountNotFound(id)
		}
		if err := fn(st, &a); err != nil {
			return err
		}
		a.UpdatedAt = time.Now().UTC()
		st.accounts[id] = a
		return nil
	})
}

func emailTaken(st *state, email string, except ulid.ULID) bool {
	for id, a := range st.accounts {
		if id != except && a.Email == email {
			return true
		}
	}
	return false
}

func accountNotFound(id ulid.ULID) error {
	return oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrAccountNotFound)
}

type verificationRepo struct{ s *Store }

func (r *verificationRepo) Create(ctx context.Context, token *auth.VerificationToken) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.accounts[token.AccountID]; !ok {
			return accountNotFound(token.AccountID)
		}
		st.verifications[token.TokenHash] = *token
		return nil
	})
}

func (r *verificationRepo) Consume(ctx context.Context, tokenHash string, now time.Time) (ulid.ULID, error) {
	var id ulid.ULID
	err := r.s.do(ctx, func(st *state) error {
		t, ok := st.verifications[tokenHash]
		if !ok || !t.ExpiresAt.After(now) {
			return oops.Code("TOKEN_NOT_REDEEMABLE").Wrap(auth.ErrTokenNotRedeemable)
		}
		delete(st.verifications, tokenHash)
		id = t.AccountID
		return nil
	})
	return id, err
}

func (r *verificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.s.do(ctx, func(st *state) error {
		n = deleteWhere(st.verifications, func(t auth.VerificationToken) bool { return !t.ExpiresAt.After(now) })
		return nil
	})
	return n, err
}

type resetRepo struct{ s *Store }

func (r *resetRepo) Create(ctx context.Context, token *auth.PasswordResetToken) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.accounts[token.AccountID]; !ok {
			return accountNotFound(token.AccountID)
		}
		st.resets[token.TokenHash] = *token
		return nil
	})
}

func (r *resetRepo) MarkUsed(ctx context.Context, tokenHash string, now time.Time) (ulid.ULID, error) {
	var id ulid.ULID
	err := r.s.do(ctx, func(st *state) error {
		t, ok := st.resets[tokenHash]
		if !ok || t.UsedAt != nil || !t.ExpiresAt.After(now) {
			return oops.Code("TOKEN_NOT_REDEEMABLE").Wrap(auth.ErrTokenNotRedeemable)
		}
		t.UsedAt = &now
		st.resets[tokenHash] = t
		id = t.AccountID
		return nil
	})
	return id, err
}

func (r *resetRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.s.do(ctx, func(st *state) error {
		n = deleteWhere(st.resets, func(t auth.PasswordResetToken) bool {
			return t.UsedAt != nil || !t.ExpiresAt.After(now)
		})
		return nil
	})
	return n, err
}

func deleteWhere[K comparable, V any](m map[K]V, match func(V) bool) int64 {
	var n int64
	for k, v := range m {
		if match(v) {
			delete(m, k)
			n++
		}
	}
	return n
}
