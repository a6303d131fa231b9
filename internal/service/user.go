package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerly/ledgerly/internal/cache"
	"github.com/ledgerly/ledgerly/internal/model"
	"github.com/ledgerly/ledgerly/internal/repository"
)

// UserService handles user business logic and the users read cache.
type UserService struct {
	store  UserStore
	cache  ListCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, listCache ListCache, ttl time.Duration, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		cache:  listCache,
		ttl:    ttl,
		logger: logger,
	}
}

// UserInput defines input for creating or updating a user.
// Updates use full-record replace semantics: every field is rewritten.
type UserInput struct {
	Username string
	Email    string
}

// Create creates a new user after verifying email uniqueness.
func (s *UserService) Create(ctx context.Context, input UserInput) (*model.User, error) {
	_, err := s.store.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}

	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.invalidate(ctx)

	return user, nil
}

// List returns a page of users, served from the users cache namespace when
// a fresh entry exists, falling back to the store on miss.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]*model.User, error) {
	key := cache.ListKey(skip, limit)

	data, err := s.cache.Get(ctx, cache.NamespaceUsers, key)
	if err == nil {
		var users []*model.User
		if err := json.Unmarshal(data, &users); err == nil {
			return users, nil
		}
		s.logger.Warn("discarding corrupt users cache entry", "key", key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("users cache read failed", "error", err)
	}

	users, err := s.store.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	if data, err := json.Marshal(users); err == nil {
		if err := s.cache.Set(ctx, cache.NamespaceUsers, key, data, s.ttl); err != nil {
			s.logger.Warn("users cache write failed", "error", err)
		}
	}

	return users, nil
}

// Get fetches a single user directly from the store. Not cached.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// Update overwrites username and email on an existing user.
// Changing the email to one owned by another user is a conflict;
// keeping the current email is always allowed.
func (s *UserService) Update(ctx context.Context, id int64, input UserInput) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Email != user.Email {
		_, err := s.store.GetUserByEmail(ctx, input.Email)
		if err == nil {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("check email uniqueness: %w", err)
		}
	}

	user.Username = input.Username
	user.Email = input.Email

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		case errors.Is(err, repository.ErrEmailExists):
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.invalidate(ctx)

	return user, nil
}

// Delete removes a user. The store cascade removes all owned accounts.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// DeleteAll removes every user and, via cascade, every account.
func (s *UserService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAllUsers(ctx); err != nil {
		return fmt.Errorf("delete all users: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// invalidate clears the users cache namespace after a committed mutation.
// A failed clear is logged, not surfaced: the TTL bounds the staleness window.
func (s *UserService) invalidate(ctx context.Context) {
	if err := s.cache.ClearNamespace(ctx, cache.NamespaceUsers); err != nil {
		s.logger.Warn("failed to clear users cache namespace", "error", err)
	}
}
