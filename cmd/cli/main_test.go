package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) {
	t.Helper()
	color.NoColor = true
	t.Setenv("DATABASE_URL", "sqlite://"+t.TempDir()+"/cli.db")
	t.Setenv("EVENT_BUS_DRIVER", "memory")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func lastField(s string) string {
	fields := strings.Fields(s)
	return fields[len(fields)-1]
}

func TestCLI_Scenario(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "create-user", "cli@example.com", "Cli", "User")
	require.NoError(t, err)
	userID := lastField(out)

	out, err = runCLI(t, "create-account", userID, "Cli", "Holder")
	require.NoError(t, err)
	accountID := lastField(out)

	_, err = runCLI(t, "deposit", accountID, "100.50")
	require.NoError(t, err)
	out, err = runCLI(t, "withdraw", accountID, "0.50")
	require.NoError(t, err)
	assert.Contains(t, out, "New balance: 100")

	_, err = runCLI(t, "withdraw", accountID, "1000")
	require.ErrorIs(t, err, domain.ErrBusinessRule)

	out, err = runCLI(t, "balance", accountID)
	require.NoError(t, err)
	assert.Contains(t, out, "balance: 100")

	out, err = runCLI(t, "statement", accountID)
	require.NoError(t, err)
	assert.Contains(t, out, "DEPOSIT")
	assert.Contains(t, out, "WITHDRAWAL")

	out, err = runCLI(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	out, err = runCLI(t, "deactivate", accountID)
	require.NoError(t, err)
	assert.Contains(t, out, "active: false")
	out, err = runCLI(t, "activate", accountID)
	require.NoError(t, err)
	assert.Contains(t, out, "active: true")
}

func TestCLI_Errors(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t)
	require.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "transfer")
	require.Error(t, err)

	_, err = runCLI(t, "deposit", "only-one-arg")
	require.Error(t, err)

	_, err = runCLI(t, "balance", "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = runCLI(t, "deposit", "7f0c5f6e-8f5a-4d8e-9c39-1a7d4a0d2f11", "abc")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = runCLI(t, "balance", "7f0c5f6e-8f5a-4d8e-9c39-1a7d4a0d2f11")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
