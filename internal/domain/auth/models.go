package auth

import "time"

// UserContext is the resolved caller identity carried on the request context.
type UserContext struct {
	UserID   string
	RoleName string
}

type AuthUser struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
	FirstName    string
	LastName     string
}

type LoginResult struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}
