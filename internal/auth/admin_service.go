// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// AccountEdit is the input to EditUser.
type AccountEdit struct {
	FirstName string
	LastName  string
	Role      Role
	Status    Status
}

// AdminService implements user management. Every operation requires an
// admin session.
type AdminService struct {
	accounts AccountRepository
	logger   *slog.Logger
}

// NewAdminService creates an AdminService. A nil logger uses slog.Default().
func NewAdminService(accounts AccountRepository, logger *slog.Logger) (*AdminService, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{accounts: accounts, logger: logger}, nil
}

// ListUsers returns all accounts, newest first.
func (s *AdminService) ListUsers(ctx context.Context, actor *Claims) ([]*Account, error) {
	if err := RequireRole(actor, RoleAdmin); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx)
}

// EditUser changes another account's names, role and status.
func (s *AdminService) EditUser(ctx context.Context, actor *Claims, id ulid.ULID, e AccountEdit) (*Account, error) {
	if err := RequireRole(actor, RoleAdmin); err != nil {
		return nil, err
	}
	if !e.Role.Valid() {
		return nil, oops.Code("EDIT_USER_INVALID").With("role", string(e.Role)).Wrap(errutil.Validation("role", "Invalid role"))
	}
	if !e.Status.Valid() {
		return nil, oops.Code("EDIT_USER_INVALID").With("status", string(e.Status)).Wrap(errutil.Validation("status", "Invalid status"))
	}

	first, last := strings.TrimSpace(e.FirstName), strings.TrimSpace(e.LastName)
	if err := s.accounts.UpdateAdmin(ctx, id, first, last, e.Role, e.Status); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account edited",
		"account_id", id.String(),
		"actor", actor.Subject,
		"role", string(e.Role),
		"status", string(e.Status))
	return s.accounts.GetByID(ctx, id)
}

// DeleteUser deletes another account. Deleting yourself is refused here;
// use the self-service delete instead.
func (s *AdminService) DeleteUser(ctx context.Context, actor *Claims, id ulid.ULID) error {
	if err := RequireRole(actor, RoleAdmin); err != nil {
		return err
	}
	if actor.Subject == id.String() {
		return oops.Code("SELF_DELETE").
			With("account_id", id.String()).
			Wrap(errutil.Conflict("You cannot delete your own account"))
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "account deleted", "account_id", id.String(), "actor", actor.Subject)
	return nil
}
