package dto

import "github.com/ledgerly/ledgerly/internal/model"

// CreateAccountRequest is the payload for creating or replacing an account.
// Balance defaults to 0.0 when omitted.
type CreateAccountRequest struct {
	AccName string  `json:"acc_name" validate:"required"`
	Balance float64 `json:"balance"`
	UserID  int64   `json:"user_id" validate:"required,gt=0"`
}

// AccountResponse is the wire representation of an account.
type AccountResponse struct {
	ID      int64   `json:"id"`
	AccName string  `json:"acc_name"`
	Balance float64 `json:"balance"`
	UserID  int64   `json:"user_id"`
}

// ToAccountResponse converts a domain account to its wire representation.
func ToAccountResponse(account *model.Account) AccountResponse {
	return AccountResponse{
		ID:      account.ID,
		AccName: account.AccName,
		Balance: account.Balance,
		UserID:  account.UserID,
	}
}

// ToAccountListResponse converts a list of domain accounts.
func ToAccountListResponse(accounts []*model.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, ToAccountResponse(account))
	}
	return out
}
