package models

import "time"

// User represents an account holder of the expense tracker.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null;type:varchar(100);check:chk_users_username,username <> ''" validate:"required,max=100"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;type:varchar(255)"` // bcrypt digest, never serialized
	CreatedAt    time.Time `json:"created_at"`
}

// Session identifies the authenticated user every transaction call is scoped to.
// It is produced by registration or authentication and passed explicitly.
type Session struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Valid reports whether the session refers to a user.
func (s Session) Valid() bool {
	return s.UserID != 0
}
