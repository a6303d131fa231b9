// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerly/ledgerly/internal/model"
)

// Service errors.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrAccountNotFound         = errors.New("account not found")
	ErrEmailTaken              = errors.New("email already taken")
	ErrAccountCreationDisabled = errors.New("account creation is disabled")
	ErrAccountLimitReached     = errors.New("account limit reached")
)

// UserStore is the subset of the repository used for user records.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
	DeleteAllUsers(ctx context.Context) error
}

// AccountStore is the subset of the repository used for account records.
type AccountStore interface {
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	ListAccounts(ctx context.Context, skip, limit int) ([]*model.Account, error)
	CountAccountsByUser(ctx context.Context, userID int64) (int, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id int64) error
	DeleteAllAccounts(ctx context.Context) error
}

// ListCache is the namespaced read cache in front of list endpoints.
type ListCache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	ClearNamespace(ctx context.Context, namespace string) error
}
