package model

import "github.com/golang-jwt/jwt/v5"

// Identity is the authenticated player behind a connection
type Identity struct {
	PlayerID string
	Nickname string
}

// PlayerClaims are JWT claims issued at login/registration
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// Identity converts validated claims into a connection identity
func (c *PlayerClaims) Identity() *Identity {
	return &Identity{PlayerID: c.PlayerID, Nickname: c.Nickname}
}

// RegisterRequest is the request body for account registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after registration or login
type AuthResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
}
