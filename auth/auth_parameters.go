package auth

import "github.com/jrsteele09/go-cms-client/users"

// LoginCredentials is the body of the token-issue call.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData is the body of the registration call.
type RegisterData struct {
	Email           string `json:"email"`
	Username        string `json:"username,omitempty"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// TokenResponse is returned by the token-issue endpoint.
type TokenResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    users.User `json:"user"`
}
