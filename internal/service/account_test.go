package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/testutil"
)

func defaultRules() config.BusinessRules {
	return config.BusinessRules{
		MaxAccountsPerUser:   3,
		AllowAccountCreation: true,
	}
}

func newAccountService(store *testutil.FakeStore, cache *testutil.FakeCache, rules config.BusinessRules) *AccountService {
	return NewAccountService(store, store, cache, rules, 20*time.Second, discardLogger())
}

func TestAccountService_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	svc := newAccountService(store, testutil.NewFakeCache(), defaultRules())

	user := store.SeedUser("ann", "ann@x.com")

	created, err := svc.Create(ctx, AccountInput{AccName: "checking", UserID: user.ID})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Balance != 0.0 {
		t.Errorf("expected default balance 0.0, got %f", created.Balance)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.AccName != "checking" || got.UserID != user.ID {
		t.Errorf("unexpected account: %+v", got)
	}
}

func TestAccountService_Create_CreationDisabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	rules := defaultRules()
	rules.AllowAccountCreation = false
	svc := newAccountService(store, testutil.NewFakeCache(), rules)

	user := store.SeedUser("ann", "ann@x.com")

	// Disabled creation wins even for an existing user under quota.
	_, err := svc.Create(ctx, AccountInput{AccName: "checking", UserID: user.ID})
	if !errors.Is(err, ErrAccountCreationDisabled) {
		t.Fatalf("expected ErrAccountCreationDisabled, got %v", err)
	}

	// The toggle is checked before user existence.
	_, err = svc.Create(ctx, AccountInput{AccName: "checking", UserID: 999})
	if !errors.Is(err, ErrAccountCreationDisabled) {
		t.Fatalf("expected ErrAccountCreationDisabled for missing user too, got %v", err)
	}
}

func TestAccountService_Create_OwnerNotFound(t *testing.T) {
	t.Parallel()
	svc := newAccountService(testutil.NewFakeStore(), testutil.NewFakeCache(), defaultRules())

	_, err := svc.Create(context.Background(), AccountInput{AccName: "checking", UserID: 999})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_Create_QuotaEnforcement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	rules := defaultRules() // limit of 3
	svc := newAccountService(store, testutil.NewFakeCache(), rules)

	user := store.SeedUser("ann", "ann@x.com")

	// Creating up to the limit succeeds.
	for i := 0; i < rules.MaxAccountsPerUser; i++ {
		if _, err := svc.Create(ctx, AccountInput{AccName: "acct", UserID: user.ID}); err != nil {
			t.Fatalf("create account %d: %v", i+1, err)
		}
	}

	// The next one exceeds the quota.
	_, err := svc.Create(ctx, AccountInput{AccName: "one too many", UserID: user.ID})
	if !errors.Is(err, ErrAccountLimitReached) {
		t.Fatalf("expected ErrAccountLimitReached, got %v", err)
	}

	// The quota is per user.
	other := store.SeedUser("bob", "bob@x.com")
	if _, err := svc.Create(ctx, AccountInput{AccName: "checking", UserID: other.ID}); err != nil {
		t.Fatalf("create for other user: %v", err)
	}
}

func TestAccountService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	svc := newAccountService(store, testutil.NewFakeCache(), defaultRules())

	user := store.SeedUser("ann", "ann@x.com")
	account := store.SeedAccount("checking", 10.0, user.ID)

	updated, err := svc.Update(ctx, account.ID, AccountInput{AccName: "savings", Balance: -5.5, UserID: user.ID})
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.AccName != "savings" || updated.Balance != -5.5 {
		t.Errorf("unexpected updated account: %+v", updated)
	}
}

func TestAccountService_Update_NotFound(t *testing.T) {
	t.Parallel()
	svc := newAccountService(testutil.NewFakeStore(), testutil.NewFakeCache(), defaultRules())

	_, err := svc.Update(context.Background(), 42, AccountInput{AccName: "x", UserID: 1})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Update_RepointOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	svc := newAccountService(store, testutil.NewFakeCache(), defaultRules())

	ann := store.SeedUser("ann", "ann@x.com")
	bob := store.SeedUser("bob", "bob@x.com")
	account := store.SeedAccount("checking", 0, ann.ID)

	// Re-pointing to a missing user is rejected.
	_, err := svc.Update(ctx, account.ID, AccountInput{AccName: "checking", UserID: 999})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// Re-pointing to an existing user succeeds.
	updated, err := svc.Update(ctx, account.ID, AccountInput{AccName: "checking", UserID: bob.ID})
	if err != nil {
		t.Fatalf("repoint account: %v", err)
	}
	if updated.UserID != bob.ID {
		t.Errorf("expected owner %d, got %d", bob.ID, updated.UserID)
	}
}

func TestAccountService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	svc := newAccountService(store, testutil.NewFakeCache(), defaultRules())

	user := store.SeedUser("ann", "ann@x.com")
	account := store.SeedAccount("checking", 0, user.ID)

	if err := svc.Delete(ctx, account.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := svc.Get(ctx, account.ID); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound after delete, got %v", err)
	}

	if err := svc.Delete(ctx, account.ID); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for second delete, got %v", err)
	}
}

func TestAccountService_List_CacheInvalidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	svc := newAccountService(store, testutil.NewFakeCache(), defaultRules())

	user := store.SeedUser("ann", "ann@x.com")

	if accounts, err := svc.List(ctx, 0, 100); err != nil || len(accounts) != 0 {
		t.Fatalf("expected empty list, got %v accounts, err %v", accounts, err)
	}

	// Out-of-band store change is hidden by the cache.
	store.SeedAccount("checking", 0, user.ID)
	if accounts, _ := svc.List(ctx, 0, 100); len(accounts) != 0 {
		t.Fatalf("expected cached empty list, got %d accounts", len(accounts))
	}

	// A mutation through the service invalidates the namespace.
	if _, err := svc.Create(ctx, AccountInput{AccName: "savings", UserID: user.ID}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	accounts, err := svc.List(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts after invalidation, got %d", len(accounts))
	}
}

func TestAccountService_NamespacesAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	fakeCache := testutil.NewFakeCache()
	accounts := newAccountService(store, fakeCache, defaultRules())
	users := NewUserService(store, fakeCache, 20*time.Second, discardLogger())

	user := store.SeedUser("ann", "ann@x.com")

	if _, err := users.List(ctx, 0, 100); err != nil {
		t.Fatalf("list users: %v", err)
	}

	// An account mutation clears only the accounts namespace.
	if _, err := accounts.Create(ctx, AccountInput{AccName: "checking", UserID: user.ID}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	store.SeedUser("bob", "bob@x.com")
	cachedUsers, err := users.List(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(cachedUsers) != 1 {
		t.Errorf("expected users namespace untouched (1 cached user), got %d", len(cachedUsers))
	}
}

func TestAccountService_DeleteAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	svc := newAccountService(store, testutil.NewFakeCache(), defaultRules())

	user := store.SeedUser("ann", "ann@x.com")
	store.SeedAccount("checking", 0, user.ID)
	store.SeedAccount("savings", 0, user.ID)

	if err := svc.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all accounts: %v", err)
	}

	accounts, err := svc.List(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("expected no accounts, got %d", len(accounts))
	}
}
