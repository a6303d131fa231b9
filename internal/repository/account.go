package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ledgerly/ledgerly/internal/model"
)

// ErrAccountNotFound is returned when no account matches the given ID.
var ErrAccountNotFound = errors.New("account not found")

// CreateAccount inserts a new account and assigns its store-generated ID.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (acc_name, balance, user_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, account.AccName, account.Balance, account.UserID).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccountByID retrieves an account by its ID.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `
		SELECT id, acc_name, balance, user_id
		FROM accounts
		WHERE id = $1
	`

	var account model.Account
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.AccName,
		&account.Balance,
		&account.UserID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &account, nil
}

// ListAccounts returns accounts ordered by ID, skipping the first skip rows
// and returning at most limit rows.
func (r *Repository) ListAccounts(ctx context.Context, skip, limit int) ([]*model.Account, error) {
	query := `
		SELECT id, acc_name, balance, user_id
		FROM accounts
		ORDER BY id
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*model.Account, 0)
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(&account.ID, &account.AccName, &account.Balance, &account.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}

	return accounts, nil
}

// CountAccountsByUser returns the current live account count for a user.
// Reflects store state at call time; no separate counter is maintained.
func (r *Repository) CountAccountsByUser(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts for user: %w", err)
	}

	return count, nil
}

// UpdateAccount overwrites acc_name, balance and user_id on an existing record.
func (r *Repository) UpdateAccount(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts
		SET acc_name = $1, balance = $2, user_id = $3
		WHERE id = $4
	`

	tag, err := r.pool.Exec(ctx, query, account.AccName, account.Balance, account.UserID, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// DeleteAccount removes a single account.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	query := `DELETE FROM accounts WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// DeleteAllAccounts removes every account.
func (r *Repository) DeleteAllAccounts(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("failed to delete all accounts: %w", err)
	}
	return nil
}
