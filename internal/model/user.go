// Package model defines domain entities for the application.
package model

// User owns zero or more accounts. Deleting a user removes all of its
// accounts via the store-level cascade.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
