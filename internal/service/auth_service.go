package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"kenolive/internal/model"
	"kenolive/internal/repository"
)

var (
	ErrMissingFields      = errors.New("por favor completa todos los campos")
	ErrUsernameTaken      = errors.New("el nombre de usuario ya existe")
	ErrEmailTaken         = errors.New("el email ya está registrado")
	ErrEmailNotRegistered = errors.New("email no registrado")
	ErrInvalidCredentials = errors.New("contraseña incorrecta")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles player registration and token issuing
type AuthService struct {
	playerRepo repository.PlayerRepo
	jwtSecret  []byte
	tokenTTL   time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(playerRepo repository.PlayerRepo, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		playerRepo: playerRepo,
		jwtSecret:  []byte(secret),
		tokenTTL:   tokenTTL,
	}
}

// Register creates a player account whose nickname is its username
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err = s.playerRepo.GetByNickname(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err = s.playerRepo.GetByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &model.Player{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     username,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return s.respond(player)
}

// Login validates email and password and returns a fresh token
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	player, err := s.playerRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrEmailNotRegistered
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(player)
}

func (s *AuthService) respond(player *model.Player) (*model.AuthResponse, error) {
	token, err := s.GenerateToken(player)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.AuthResponse{
		Token:    token,
		PlayerID: player.ID,
		Nickname: player.Nickname,
	}, nil
}

// GenerateToken signs an HS256 token for player
func (s *AuthService) GenerateToken(player *model.Player) (string, error) {
	now := time.Now()
	claims := &model.PlayerClaims{
		PlayerID: player.ID,
		Nickname: player.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a player JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
