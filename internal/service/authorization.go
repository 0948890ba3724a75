package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-host-api/internal/credential"
	"bank-host-api/internal/events"
	"bank-host-api/internal/model"
	"bank-host-api/internal/repository"
)

// AccountLedger is the account storage the authorization engine reads and debits
type AccountLedger interface {
	FindByCard(ctx context.Context, cardNumber string) (*model.Account, error)
	BalanceOf(ctx context.Context, cardNumber string) (decimal.Decimal, error)
	ApplyWithdrawal(ctx context.Context, cardNumber string, amount decimal.Decimal) (decimal.Decimal, error)
}

// Withdrawal amounts are whole cents above zero and at most maxWithdrawal.
// The exponent is bounded before any comparison so an amount like 1e20000000
// is rejected without being expanded.
const (
	minAmountExponent = -8
	maxAmountExponent = 9
	amountPlaces      = 2
)

var maxWithdrawal = decimal.NewFromInt(1_000_000)

// CredentialVerifier checks a wire-form credential against a stored hash
type CredentialVerifier interface {
	Verify(wire, storedHash string) (bool, error)
}

// Config holds authorization engine settings
type Config struct {
	EventSubject string `valid:"required"`
}

type transactionHandler func(ctx context.Context, account *model.Account, req *model.TransactionRequest) (*model.AuthorizationResult, error)

// AuthorizationService decides whether ATM transactions are approved
type AuthorizationService struct {
	ledger    AccountLedger
	verifier  CredentialVerifier
	publisher events.Publisher
	logger    *slog.Logger
	cfg       Config

	handlers map[model.TransactionType]transactionHandler
}

// NewAuthorizationService creates a new authorization service.
// It panics if any type in model.TransactionTypes has no handler.
func NewAuthorizationService(
	ledger AccountLedger,
	verifier CredentialVerifier,
	publisher events.Publisher,
	logger *slog.Logger,
	cfg Config,
) *AuthorizationService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	s := &AuthorizationService{
		ledger:    ledger,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger.With("service", "authorization"),
		cfg:       cfg,
	}

	s.handlers = map[model.TransactionType]transactionHandler{
		model.TransactionTypeBalanceInquiry: s.handleBalanceInquiry,
		model.TransactionTypeWithdrawal:     s.handleWithdrawal,
	}

	if err := checkDispatch(s.handlers); err != nil {
		panic(err)
	}

	return s
}

// checkDispatch makes sure every declared transaction type has a handler
func checkDispatch(handlers map[model.TransactionType]transactionHandler) error {
	for _, t := range model.TransactionTypes() {
		if _, ok := handlers[t]; !ok {
			return fmt.Errorf("no handler registered for transaction type %s", t)
		}
	}
	return nil
}

// Authorize runs a transaction request through credential verification and the
// handler for its type. Business declines are returned as results; only faults
// the engine cannot classify are returned as errors.
func (s *AuthorizationService) Authorize(ctx context.Context, req *model.TransactionRequest) (*model.AuthorizationResult, error) {
	logger := s.logger.With("card", model.MaskCard(req.CardNumber), "type", req.Type)

	account, err := s.ledger.FindByCard(ctx, req.CardNumber)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return s.decline(logger, model.MessageAccountNotFound), nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	ok, err := s.verifier.Verify(req.EncryptedCredential, account.CredentialHash)
	if err != nil && !errors.Is(err, credential.ErrInvalidCredentialFormat) {
		return nil, fmt.Errorf("failed to verify credential: %w", err)
	}
	if !ok {
		return s.decline(logger, model.MessageInvalidCredential), nil
	}

	handle, found := s.handlers[req.Type]
	if !found {
		return s.decline(logger, model.MessageUnknownType), nil
	}

	result, err := handle(ctx, account, req)
	if err != nil {
		return nil, err
	}

	if result.Approved {
		logger.Info("transaction approved", "message", result.Message)
	} else {
		logger.Info("transaction declined", "reason", result.Message)
	}
	return result, nil
}

func (s *AuthorizationService) decline(logger *slog.Logger, reason string) *model.AuthorizationResult {
	logger.Info("transaction declined", "reason", reason)
	return model.Decline(reason)
}

func (s *AuthorizationService) handleBalanceInquiry(ctx context.Context, account *model.Account, _ *model.TransactionRequest) (*model.AuthorizationResult, error) {
	balance, err := s.ledger.BalanceOf(ctx, account.CardNumber)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return model.Decline(model.MessageAccountNotFound), nil
		}
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	return model.Approve(model.MessageInquiryApproved, balance), nil
}

func (s *AuthorizationService) handleWithdrawal(ctx context.Context, account *model.Account, req *model.TransactionRequest) (*model.AuthorizationResult, error) {
	if req.Amount == nil || !validWithdrawalAmount(*req.Amount) {
		return model.Decline(model.MessageInvalidAmount), nil
	}
	amount := *req.Amount

	newBalance, err := s.ledger.ApplyWithdrawal(ctx, account.CardNumber, amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return model.Decline(model.MessageInsufficientFunds), nil
		case errors.Is(err, repository.ErrInvalidAmount):
			return model.Decline(model.MessageInvalidAmount), nil
		case errors.Is(err, repository.ErrAccountNotFound):
			return model.Decline(model.MessageAccountNotFound), nil
		default:
			return nil, fmt.Errorf("failed to apply withdrawal: %w", err)
		}
	}

	s.publishWithdrawal(ctx, account, amount, newBalance)

	return model.Approve(model.MessageWithdrawalApproved, newBalance), nil
}

func validWithdrawalAmount(amount decimal.Decimal) bool {
	exp := amount.Exponent()
	if exp < minAmountExponent || exp > maxAmountExponent {
		return false
	}
	return amount.IsPositive() &&
		amount.LessThanOrEqual(maxWithdrawal) &&
		amount.Equal(amount.Truncate(amountPlaces))
}

// publishWithdrawal emits an event for a committed withdrawal. The ledger is
// already updated at this point, so a failed publish is logged and dropped.
func (s *AuthorizationService) publishWithdrawal(ctx context.Context, account *model.Account, amount, newBalance decimal.Decimal) {
	event := model.WithdrawalEvent{
		ID:         uuid.New(),
		AccountID:  account.ID,
		CardNumber: account.MaskedCard(),
		Amount:     amount,
		NewBalance: newBalance,
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("json.Marshal withdrawal event", "err", err)
		return
	}

	if err := s.publisher.Publish(ctx, s.cfg.EventSubject, data); err != nil {
		s.logger.Warn("publisher.Publish", "subject", s.cfg.EventSubject, "event", event.ID, "err", err)
	}
}
