// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/config"
	"github.com/gamenight/gamenight/pkg/errutil"
)

func TestRunPurge(t *testing.T) {
	cmd, out := testCommand(t)
	mock := mockDatabase(t)
	mock.ExpectExec("DELETE FROM verification_tokens").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec("DELETE FROM password_reset_tokens").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, runPurgeWithDeps(cmd, testConfig(), time.Second, databaseDeps(mock)))

	assert.Equal(t, "Purged 4 verification tokens and 2 reset tokens\n", out.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunPurge_DeleteFails(t *testing.T) {
	cmd, out := testCommand(t)
	mock := mockDatabase(t)
	mock.ExpectExec("DELETE FROM verification_tokens").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("permission denied"))

	err := runPurgeWithDeps(cmd, testConfig(), time.Second, databaseDeps(mock))

	errutil.AssertErrorCode(t, err, "VERIFICATION_DELETE_EXPIRED_FAILED")
	assert.Empty(t, out.String())
}

func TestRunPurge_MissingDatabaseURL(t *testing.T) {
	cmd, _ := testCommand(t)

	err := runPurgeWithDeps(cmd, &config.Config{}, time.Second, nil)

	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
