package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerly/ledgerly/internal/cache"
	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/model"
	"github.com/ledgerly/ledgerly/internal/repository"
)

// AccountService handles account business logic, policy enforcement and the
// accounts read cache.
type AccountService struct {
	store  AccountStore
	users  UserStore
	cache  ListCache
	rules  config.BusinessRules
	ttl    time.Duration
	logger *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store AccountStore, users UserStore, listCache ListCache, rules config.BusinessRules, ttl time.Duration, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		users:  users,
		cache:  listCache,
		rules:  rules,
		ttl:    ttl,
		logger: logger,
	}
}

// AccountInput defines input for creating or updating an account.
// Updates use full-record replace semantics: every field is rewritten.
type AccountInput struct {
	AccName string
	Balance float64
	UserID  int64
}

// Create creates a new account. Checks run in a fixed order: the global
// creation toggle, then owner existence, then the per-user limit.
func (s *AccountService) Create(ctx context.Context, input AccountInput) (*model.Account, error) {
	if !s.rules.AllowAccountCreation {
		return nil, ErrAccountCreationDisabled
	}

	if _, err := s.users.GetUserByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, input.UserID)
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	count, err := s.store.CountAccountsByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	if count >= s.rules.MaxAccountsPerUser {
		return nil, fmt.Errorf("%w: limit of %d accounts", ErrAccountLimitReached, s.rules.MaxAccountsPerUser)
	}

	// The count check and the insert are separate statements with no lock
	// between them; concurrent creates for the same user can transiently
	// exceed the limit.
	account := &model.Account{
		AccName: input.AccName,
		Balance: input.Balance,
		UserID:  input.UserID,
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.invalidate(ctx)

	return account, nil
}

// List returns a page of accounts, served from the accounts cache namespace
// when a fresh entry exists, falling back to the store on miss.
func (s *AccountService) List(ctx context.Context, skip, limit int) ([]*model.Account, error) {
	key := cache.ListKey(skip, limit)

	data, err := s.cache.Get(ctx, cache.NamespaceAccounts, key)
	if err == nil {
		var accounts []*model.Account
		if err := json.Unmarshal(data, &accounts); err == nil {
			return accounts, nil
		}
		s.logger.Warn("discarding corrupt accounts cache entry", "key", key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("accounts cache read failed", "error", err)
	}

	accounts, err := s.store.ListAccounts(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	if data, err := json.Marshal(accounts); err == nil {
		if err := s.cache.Set(ctx, cache.NamespaceAccounts, key, data, s.ttl); err != nil {
			s.logger.Warn("accounts cache write failed", "error", err)
		}
	}

	return accounts, nil
}

// Get fetches a single account directly from the store. Not cached.
func (s *AccountService) Get(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

// Update overwrites acc_name, balance and user_id on an existing account.
// When the payload points to a different owner, the new owner must exist;
// the current owner is never re-validated.
func (s *AccountService) Update(ctx context.Context, id int64, input AccountInput) (*model.Account, error) {
	account, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	if input.UserID != account.UserID {
		if _, err := s.users.GetUserByID(ctx, input.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, input.UserID)
			}
			return nil, fmt.Errorf("get new owner: %w", err)
		}
	}

	account.AccName = input.AccName
	account.Balance = input.Balance
	account.UserID = input.UserID

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.invalidate(ctx)

	return account, nil
}

// Delete removes a single account.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
		}
		return fmt.Errorf("delete account: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// DeleteAll removes every account.
func (s *AccountService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAllAccounts(ctx); err != nil {
		return fmt.Errorf("delete all accounts: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// invalidate clears the accounts cache namespace after a committed mutation.
func (s *AccountService) invalidate(ctx context.Context) {
	if err := s.cache.ClearNamespace(ctx, cache.NamespaceAccounts); err != nil {
		s.logger.Warn("failed to clear accounts cache namespace", "error", err)
	}
}
