package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerly/ledgerly/internal/cache"
	"github.com/ledgerly/ledgerly/internal/model"
	"github.com/ledgerly/ledgerly/internal/repository"
)

// FakeStore is an in-memory stand-in for the repository, implementing the
// service layer's user and account store interfaces. Deleting a user cascades
// to its accounts, mirroring the FK constraint in the real schema.
type FakeStore struct {
	mu            sync.Mutex
	users         map[int64]*model.User
	accounts      map[int64]*model.Account
	nextUserID    int64
	nextAccountID int64
}

// NewFakeStore creates an empty in-memory store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:    make(map[int64]*model.User),
		accounts: make(map[int64]*model.Account),
	}
}

func (f *FakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	f.nextUserID++
	user.ID = f.nextUserID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *FakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *FakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *FakeStore) ListUsers(_ context.Context, skip, limit int) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make([]*model.User, 0, len(f.users))
	for id := int64(1); id <= f.nextUserID; id++ {
		if user, ok := f.users[id]; ok {
			clone := *user
			users = append(users, &clone)
		}
	}

	if skip >= len(users) {
		return []*model.User{}, nil
	}
	users = users[skip:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (f *FakeStore) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for _, u := range f.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *FakeStore) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	for accID, acc := range f.accounts {
		if acc.UserID == id {
			delete(f.accounts, accID)
		}
	}
	return nil
}

func (f *FakeStore) DeleteAllUsers(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users = make(map[int64]*model.User)
	f.accounts = make(map[int64]*model.Account)
	return nil
}

func (f *FakeStore) CreateAccount(_ context.Context, account *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextAccountID++
	account.ID = f.nextAccountID
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *FakeStore) GetAccountByID(_ context.Context, id int64) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

func (f *FakeStore) ListAccounts(_ context.Context, skip, limit int) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts := make([]*model.Account, 0, len(f.accounts))
	for id := int64(1); id <= f.nextAccountID; id++ {
		if account, ok := f.accounts[id]; ok {
			clone := *account
			accounts = append(accounts, &clone)
		}
	}

	if skip >= len(accounts) {
		return []*model.Account{}, nil
	}
	accounts = accounts[skip:]
	if limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func (f *FakeStore) CountAccountsByUser(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, account := range f.accounts {
		if account.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *FakeStore) UpdateAccount(_ context.Context, account *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *FakeStore) DeleteAccount(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *FakeStore) DeleteAllAccounts(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.accounts = make(map[int64]*model.Account)
	return nil
}

// SeedUser inserts a user directly, bypassing service-level validation.
// Used to simulate out-of-band store changes.
func (f *FakeStore) SeedUser(username, email string) *model.User {
	user := &model.User{Username: username, Email: email}
	_ = f.CreateUser(context.Background(), user)
	return user
}

// SeedAccount inserts an account directly, bypassing policy checks.
func (f *FakeStore) SeedAccount(accName string, balance float64, userID int64) *model.Account {
	account := &model.Account{AccName: accName, Balance: balance, UserID: userID}
	_ = f.CreateAccount(context.Background(), account)
	return account
}

type fakeCacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// FakeCache is an in-memory namespaced cache honoring TTL expiry.
type FakeCache struct {
	mu      sync.Mutex
	entries map[string]fakeCacheEntry

	// Clock can be overridden to step time in expiry tests.
	Clock func() time.Time
}

// NewFakeCache creates an empty in-memory cache.
func NewFakeCache() *FakeCache {
	return &FakeCache{
		entries: make(map[string]fakeCacheEntry),
		Clock:   time.Now,
	}
}

func (f *FakeCache) Get(_ context.Context, namespace, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[namespace+":"+key]
	if !ok || f.Clock().After(entry.expiresAt) {
		return nil, cache.ErrCacheMiss
	}
	return entry.data, nil
}

func (f *FakeCache) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[namespace+":"+key] = fakeCacheEntry{
		data:      value,
		expiresAt: f.Clock().Add(ttl),
	}
	return nil
}

func (f *FakeCache) ClearNamespace(_ context.Context, namespace string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := namespace + ":"
	for key := range f.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(f.entries, key)
		}
	}
	return nil
}

// Len reports the number of live entries, expired ones included.
func (f *FakeCache) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
