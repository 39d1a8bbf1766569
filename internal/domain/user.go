package domain

import (
	"strings"
	"time"

	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// User is an account holder. Reviews denormalize the username at creation
// time, so renames never rewrite historical reviews.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields required at registration.
func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return apperrors.InvalidInput("a valid email address is required")
	}
	if strings.TrimSpace(u.Username) == "" {
		return apperrors.InvalidInput("username is required")
	}
	return nil
}

// UsernameFromEmail derives a display username from an email address.
func UsernameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
