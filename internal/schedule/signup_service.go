// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// SignupService enforces one active signup per account.
type SignupService struct {
	games   GameRepository
	signups SignupRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewSignupService creates a SignupService. A nil logger uses slog.Default().
func NewSignupService(games GameRepository, signups SignupRepository, logger *slog.Logger) (*SignupService, error) {
	if games == nil {
		return nil, oops.Errorf("game repository is required")
	}
	if signups == nil {
		return nil, oops.Errorf("signup repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SignupService{games: games, signups: signups, logger: logger, now: time.Now}, nil
}

// SetClock overrides the time source. For tests.
func (s *SignupService) SetClock(now func() time.Time) {
	s.now = now
}

// Signup signs the account up for the game.
func (s *SignupService) Signup(ctx context.Context, accountID, gameID ulid.ULID) (*Signup, error) {
	if _, err := s.games.Get(ctx, gameID); err != nil {
		if errors.Is(err, errutil.ErrNotFound) {
			recordSignup(OutcomeGameNotFound)
		} else {
			recordSignup(OutcomeError)
		}
		return nil, err
	}

	existing, err := s.activeSignup(ctx, accountID)
	if err != nil {
		recordSignup(OutcomeError)
		return nil, err
	}
	if existing != nil {
		return nil, s.conflict(existing, gameID)
	}

	signup := &Signup{
		ID:         ulid.Make(),
		GameID:     gameID,
		AccountID:  accountID,
		SignedUpAt: s.now().UTC(),
	}
	err = s.signups.Create(ctx, signup)
	switch {
	case err == nil:
	case errors.Is(err, ErrSignupExists):
		// Another request for this account committed first.
		recordSignup(OutcomeRaceLost)
		winner, rerr := s.activeSignup(ctx, accountID)
		if rerr != nil || winner == nil {
			return nil, err
		}
		return nil, s.conflictMessage(winner, gameID)
	case errors.Is(err, errutil.ErrNotFound):
		recordSignup(OutcomeGameNotFound)
		return nil, err
	default:
		recordSignup(OutcomeError)
		return nil, err
	}

	recordSignup(OutcomeSignedUp)
	s.logger.InfoContext(ctx, "signed up",
		"account_id", accountID.String(),
		"game_id", gameID.String())
	return signup, nil
}

// RemoveSignup removes the account's signup for the game.
func (s *SignupService) RemoveSignup(ctx context.Context, accountID, gameID ulid.ULID) error {
	if err := s.signups.Delete(ctx, accountID, gameID); err != nil {
		return err
	}
	recordSignup(OutcomeSignupRemoved)
	s.logger.InfoContext(ctx, "signup removed",
		"account_id", accountID.String(),
		"game_id", gameID.String())
	return nil
}

// GetActiveSignup returns the account's signup, or nil when it has none.
func (s *SignupService) GetActiveSignup(ctx context.Context, accountID ulid.ULID) (*Signup, error) {
	return s.activeSignup(ctx, accountID)
}

// ActiveSignupDetail returns the account's signup with its game and venue,
// or ErrNoActiveSignup.
func (s *SignupService) ActiveSignupDetail(ctx context.Context, accountID ulid.ULID) (*SignupDetail, error) {
	return s.signups.Detail(ctx, accountID)
}

// ListSignups returns the game's participants in signup order.
func (s *SignupService) ListSignups(ctx context.Context, gameID ulid.ULID) ([]*Participant, error) {
	if _, err := s.games.Get(ctx, gameID); err != nil {
		return nil, err
	}
	return s.signups.ListByGame(ctx, gameID)
}

func (s *SignupService) activeSignup(ctx context.Context, accountID ulid.ULID) (*Signup, error) {
	signup, err := s.signups.GetByAccount(ctx, accountID)
	if errors.Is(err, ErrNoActiveSignup) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return signup, nil
}

func (s *SignupService) conflict(existing *Signup, gameID ulid.ULID) error {
	if existing.GameID == gameID {
		recordSignup(OutcomeSameGame)
	} else {
		recordSignup(OutcomeOtherGame)
	}
	return s.conflictMessage(existing, gameID)
}

func (s *SignupService) conflictMessage(existing *Signup, gameID ulid.ULID) error {
	if existing.GameID == gameID {
		return oops.Code("SIGNUP_SAME_GAME").
			With("game_id", gameID.String()).
			Wrap(ErrAlreadySignedUp)
	}
	return oops.Code("SIGNUP_OTHER_GAME").
		With("game_id", gameID.String()).
		With("existing_game_id", existing.GameID.String()).
		Wrap(ErrSignedUpElsewhere)
}
