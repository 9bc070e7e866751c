package models

import "time"

// User is a registered account. Phone is the unique key (10 digits, no
// country prefix). Passwords are stored as bcrypt hashes. The hash carries a
// json tag because users are persisted through the JSON key-value store;
// handlers must never return User directly, only CurrentUser.
type User struct {
	Phone        string    `json:"phone"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CurrentUser is the session snapshot persisted while a user is logged in.
type CurrentUser struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	LoginTime time.Time `json:"loginTime"`
}
