package model

// Account is a financial account owned by a single user.
// Balance may be any float; no non-negativity constraint is enforced.
type Account struct {
	ID      int64   `json:"id"`
	AccName string  `json:"acc_name"`
	Balance float64 `json:"balance"`
	UserID  int64   `json:"user_id"`
}
