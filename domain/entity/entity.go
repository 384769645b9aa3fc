package entity

import "time"

// User represents an account with its credit balance.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Credits      int64     `json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
}

// Location is a saved place owned by exactly one user, enriched with
// geolocation, weather and a generated description at creation time.
type Location struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"timestamp"`
}

// TokenPair is the access/refresh token set handed out on login,
// refresh and identity change.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
