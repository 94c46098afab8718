package users

import (
	"fmt"
	"slices"
	"time"
	"unicode"

	"github.com/jrsteele09/go-cms-client/internal/utils"
)

// RoleType is a user's role within one account
type RoleType string

const (
	RoleAdmin  RoleType = "admin"  // Manages users, billing and settings of the account
	RoleEditor RoleType = "editor" // Edits and publishes any article, views analytics
	RoleAuthor RoleType = "author" // Writes and publishes own articles
	RoleViewer RoleType = "viewer" // Read-only access
)

// Valid reports whether r is one of the known account roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor, RoleViewer:
		return true
	}
	return false
}

// OneOf reports whether r is any of roles.
func (r RoleType) OneOf(roles ...RoleType) bool {
	return slices.Contains(roles, r)
}

type User struct {
	ID                 string     `json:"id"`                       // Unique identifier for the user
	Email              string     `json:"email"`                    // User's email address
	Username           string     `json:"username,omitempty"`       // Unique username
	FirstName          string     `json:"first_name,omitempty"`     // First name of the user
	LastName           string     `json:"last_name,omitempty"`      // Last name of the user
	Bio                string     `json:"bio,omitempty"`            // Author biography shown on articles
	Avatar             *string    `json:"avatar,omitempty"`         // Avatar URL
	IsTrialing         bool       `json:"is_trialing,omitempty"`    // Trialing, still inside the free trial
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`  // When the free trial ends
	EmailNotifications bool       `json:"email_notifications"`      // Receives notification emails
	MarketingEmails    bool       `json:"marketing_emails"`         // Receives marketing emails
	DateJoined         time.Time  `json:"date_joined,omitempty"`    // Date and time when the user registered
	LastLogin          *time.Time `json:"last_login,omitempty"`     // Last time the user logged in
}

// Update is a partial profile change; nil fields are left untouched.
type Update struct {
	Username           *string `json:"username,omitempty"`
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	Avatar             *string `json:"avatar,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	MarketingEmails    *bool   `json:"marketing_emails,omitempty"`
}

// Merge applies the non-nil fields of upd to u.
func (u *User) Merge(upd Update) {
	utils.Assign(&u.Username, upd.Username)
	utils.Assign(&u.FirstName, upd.FirstName)
	utils.Assign(&u.LastName, upd.LastName)
	utils.Assign(&u.Bio, upd.Bio)
	if upd.Avatar != nil {
		u.Avatar = upd.Avatar
	}
	utils.Assign(&u.EmailNotifications, upd.EmailNotifications)
	utils.Assign(&u.MarketingEmails, upd.MarketingEmails)
}

// DisplayName prefers the full name, then the username, then the email.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" || u.LastName != "":
		if u.LastName == "" {
			return u.FirstName
		}
		if u.FirstName == "" {
			return u.LastName
		}
		return u.FirstName + " " + u.LastName
	case u.Username != "":
		return u.Username
	}
	return u.Email
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
