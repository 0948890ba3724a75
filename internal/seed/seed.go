// Package seed provisions the ledger's accounts at startup, either from the
// config file or from an accounts table in Postgres.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
	"github.com/zyedidia/generic/mapset"
	"golang.org/x/crypto/bcrypt"

	"bank-host-api/internal/config"
	"bank-host-api/internal/model"
)

// Seed errors
var (
	ErrDuplicateCard    = errors.New("duplicate card number")
	ErrMissingCard      = errors.New("card number is required")
	ErrCredentialChoice = errors.New("exactly one of credential and credential_hash is required")
	ErrInvalidHash      = errors.New("credential hash is not a bcrypt hash")
	ErrInvalidBalance   = errors.New("balance must be a non-negative decimal")
	ErrUnknownSource    = errors.New("unknown seed source")
)

// Hasher turns a plaintext PIN into the form stored in the ledger
type Hasher interface {
	Hash(secret string) (string, error)
}

// Load provisions accounts from the source named in cfg
func Load(ctx context.Context, cfg config.SeedConfig, hasher Hasher, logger *slog.Logger) ([]*model.Account, error) {
	var (
		accounts []*model.Account
		err      error
	)

	switch cfg.Source {
	case "config", "":
		accounts, err = FromConfig(cfg.Accounts, hasher)
	case "postgres":
		accounts, err = fromDatabase(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(accounts); err != nil {
		return nil, err
	}

	logger.Info("accounts provisioned",
		"source", cfg.Source,
		"count", len(accounts),
		"cards", generic.MapSlice(accounts, (*model.Account).MaskedCard),
	)
	return accounts, nil
}

// FromConfig builds accounts from config entries. Plaintext credentials are
// hashed here and never leave this function.
func FromConfig(entries []config.SeedAccount, hasher Hasher) ([]*model.Account, error) {
	accounts := make([]*model.Account, 0, len(entries))
	now := time.Now().UTC()

	for i, e := range entries {
		account := &model.Account{
			ID:         uuid.New(),
			CardNumber: e.CardNumber,
			UpdatedAt:  now,
		}

		if e.ID != "" {
			id, err := uuid.Parse(e.ID)
			if err != nil {
				return nil, fmt.Errorf("seed account %d: invalid id: %w", i, err)
			}
			account.ID = id
		}

		balance, err := decimal.NewFromString(e.Balance)
		if err != nil {
			return nil, fmt.Errorf("seed account %d: %w", i, ErrInvalidBalance)
		}
		account.Balance = balance

		switch {
		case e.Credential != "" && e.CredentialHash == "":
			hash, err := hasher.Hash(e.Credential)
			if err != nil {
				return nil, fmt.Errorf("seed account %d: %w", i, err)
			}
			account.CredentialHash = hash
		case e.Credential == "" && e.CredentialHash != "":
			account.CredentialHash = e.CredentialHash
		default:
			return nil, fmt.Errorf("seed account %d: %w", i, ErrCredentialChoice)
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

// FromPostgres reads every row of the accounts table
func FromPostgres(ctx context.Context, db *sql.DB) ([]*model.Account, error) {
	rows, err := accountsQuery().RunWith(db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account := &model.Account{}
		if err := rows.Scan(
			&account.ID,
			&account.CardNumber,
			&account.CredentialHash,
			&account.Balance,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func accountsQuery() sq.SelectBuilder {
	return sq.Select("id", "card_number", "credential_hash", "balance", "updated_at").
		From("accounts").
		OrderBy("card_number").
		PlaceholderFormat(sq.Dollar)
}

// OpenPostgres opens and pings a Postgres connection
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// fromDatabase loads accounts and closes the connection; the ledger itself stays in memory
func fromDatabase(ctx context.Context, cfg config.DatabaseConfig) ([]*model.Account, error) {
	db, err := OpenPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return FromPostgres(ctx, db)
}

func validate(accounts []*model.Account) error {
	seen := mapset.New[string]()

	for _, account := range accounts {
		if account.CardNumber == "" {
			return fmt.Errorf("account %s: %w", account.ID, ErrMissingCard)
		}
		if seen.Has(account.CardNumber) {
			return fmt.Errorf("account %s: %w", account.MaskedCard(), ErrDuplicateCard)
		}
		seen.Put(account.CardNumber)

		if account.Balance.IsNegative() {
			return fmt.Errorf("account %s: %w", account.MaskedCard(), ErrInvalidBalance)
		}
		// a plaintext PIN in the hash column must never reach the ledger
		if _, err := bcrypt.Cost([]byte(account.CredentialHash)); err != nil {
			return fmt.Errorf("account %s: %w", account.MaskedCard(), ErrInvalidHash)
		}
	}

	return nil
}
