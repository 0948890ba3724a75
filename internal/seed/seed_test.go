package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bank-host-api/internal/config"
	"bank-host-api/internal/credential"
	"bank-host-api/internal/model"
)

func TestFromConfig(t *testing.T) {
	codec := credential.NewCodec(bcrypt.MinCost)
	storedHash, err := codec.Hash("4567")
	require.NoError(t, err)

	accounts, err := FromConfig([]config.SeedAccount{
		{ID: "6f1c2a3e-9a57-4d8b-9a43-3f2c1a4b5c6d", CardNumber: "1234567890", Credential: "1234", Balance: "1000"},
		{CardNumber: "0987654321", CredentialHash: storedHash, Balance: "5000.50"},
	}, codec)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, uuid.MustParse("6f1c2a3e-9a57-4d8b-9a43-3f2c1a4b5c6d"), accounts[0].ID)
	assert.NotEqual(t, "1234", accounts[0].CredentialHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accounts[0].CredentialHash), []byte("1234")))
	assert.True(t, decimal.NewFromInt(1000).Equal(accounts[0].Balance))

	assert.NotEqual(t, uuid.Nil, accounts[1].ID)
	assert.Equal(t, storedHash, accounts[1].CredentialHash)
	assert.True(t, decimal.RequireFromString("5000.50").Equal(accounts[1].Balance))
}

func TestFromConfig_Invalid(t *testing.T) {
	codec := credential.NewCodec(bcrypt.MinCost)

	tests := []struct {
		name    string
		entry   config.SeedAccount
		wantErr error
	}{
		{
			name:    "both credential forms",
			entry:   config.SeedAccount{CardNumber: "1", Credential: "1234", CredentialHash: "x", Balance: "1"},
			wantErr: ErrCredentialChoice,
		},
		{
			name:    "no credential",
			entry:   config.SeedAccount{CardNumber: "1", Balance: "1"},
			wantErr: ErrCredentialChoice,
		},
		{
			name:    "bad balance",
			entry:   config.SeedAccount{CardNumber: "1", Credential: "1234", Balance: "lots"},
			wantErr: ErrInvalidBalance,
		},
		{
			name:    "malformed pin",
			entry:   config.SeedAccount{CardNumber: "1", Credential: "12", Balance: "1"},
			wantErr: credential.ErrInvalidCredentialFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig([]config.SeedAccount{tt.entry}, codec)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("bad id", func(t *testing.T) {
		_, err := FromConfig([]config.SeedAccount{{ID: "acc-001", CardNumber: "1", Credential: "1234", Balance: "1"}}, codec)
		assert.Error(t, err)
	})
}

func TestLoad_ConfigSource(t *testing.T) {
	codec := credential.NewCodec(bcrypt.MinCost)

	accounts, err := Load(context.Background(), config.SeedConfig{
		Source: "config",
		Accounts: []config.SeedAccount{
			{CardNumber: "1234567890", Credential: "1234", Balance: "1000"},
			{CardNumber: "0987654321", Credential: "4567", Balance: "5000"},
			{CardNumber: "1122334455", Credential: "7890", Balance: "3000"},
		},
	}, codec, discardLogger())
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}

func TestLoad_Rejects(t *testing.T) {
	codec := credential.NewCodec(bcrypt.MinCost)

	tests := []struct {
		name    string
		cfg     config.SeedConfig
		wantErr error
	}{
		{
			name: "duplicate card",
			cfg: config.SeedConfig{Source: "config", Accounts: []config.SeedAccount{
				{CardNumber: "1234567890", Credential: "1234", Balance: "1"},
				{CardNumber: "1234567890", Credential: "4567", Balance: "1"},
			}},
			wantErr: ErrDuplicateCard,
		},
		{
			name: "plaintext pin in hash column",
			cfg: config.SeedConfig{Source: "config", Accounts: []config.SeedAccount{
				{CardNumber: "1234567890", CredentialHash: "1234", Balance: "1"},
			}},
			wantErr: ErrInvalidHash,
		},
		{
			name: "negative balance",
			cfg: config.SeedConfig{Source: "config", Accounts: []config.SeedAccount{
				{CardNumber: "1234567890", Credential: "1234", Balance: "-1"},
			}},
			wantErr: ErrInvalidBalance,
		},
		{
			name: "missing card",
			cfg: config.SeedConfig{Source: "config", Accounts: []config.SeedAccount{
				{Credential: "1234", Balance: "1"},
			}},
			wantErr: ErrMissingCard,
		},
		{
			name:    "unknown source",
			cfg:     config.SeedConfig{Source: "s3"},
			wantErr: ErrUnknownSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.cfg, codec, discardLogger())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountsQuery(t *testing.T) {
	query, args, err := accountsQuery().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, card_number, credential_hash, balance, updated_at FROM accounts ORDER BY card_number", query)
	assert.Empty(t, args)
}

func TestValidate_MasksCardInErrors(t *testing.T) {
	err := validate([]*model.Account{{CardNumber: "1234567890", CredentialHash: "1234"}})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "1234567890")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
