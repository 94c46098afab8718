package auth

import "errors"

var (
	UserPasswordsDontMatchErr = errors.New("user passwords not matched")
	WeakPasswordErr           = errors.New("password too weak")
)

const (
	loginFailedMessage        = "Login failed"
	registrationFailedMessage = "Registration failed"
)
