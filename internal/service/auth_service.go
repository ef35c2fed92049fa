package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"tileledger/internal/config"
	"tileledger/internal/dto"
	"tileledger/internal/infra"
	"tileledger/internal/model"
	"tileledger/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32
	saltBytes        = 16
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// EnsureUser creates the allow-listed user with the default password when
	// it is missing. An existing user is left untouched.
	EnsureUser(ctx context.Context) (created bool, err error)
}

type authService struct {
	store  repository.Store
	locker infra.Locker
	cfg    *config.Config
}

func NewAuthService(store repository.Store, locker infra.Locker, cfg *config.Config) AuthService {
	return &authService{store: store, locker: locker, cfg: cfg}
}

// NormalizeUsername is the canonical form usernames are stored and compared in.
func NormalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// NewSalt returns 16 random bytes as hex.
func NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashPassword derives the hex PBKDF2-HMAC-SHA256 digest of password under a hex salt.
func HashPassword(password, salt string) (string, error) {
	raw, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	dk := pbkdf2.Key([]byte(password), raw, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(dk), nil
}

// VerifyPassword compares in constant time. A malformed salt never verifies.
func VerifyPassword(password, salt, hash string) bool {
	got, err := HashPassword(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(hash))) == 1
}

func findUser(users []model.User, username string) (model.User, bool) {
	for _, u := range users {
		if NormalizeUsername(u.Username) == username {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := NormalizeUsername(req.Username)
	if username == "" || username != NormalizeUsername(s.cfg.AuthUsername) {
		return nil, ErrInvalidCredentials
	}
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	user, ok := findUser(users, username)
	if !ok || !VerifyPassword(req.Password, user.Salt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	token, err := s.generateToken(username, ttl)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", username).Msg("login")
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
		Username:    username,
	}, nil
}

func (s *authService) EnsureUser(ctx context.Context) (bool, error) {
	username := NormalizeUsername(s.cfg.AuthUsername)
	if username == "" {
		return false, invalid("username", "is required")
	}
	created := false
	err := withLock(ctx, s.locker, func() error {
		users, err := s.store.Users(ctx)
		if err != nil {
			return fmt.Errorf("read users: %w", err)
		}
		if _, ok := findUser(users, username); ok {
			return nil
		}
		salt, err := NewSalt()
		if err != nil {
			return err
		}
		hash, err := HashPassword(s.cfg.AuthDefaultPassword, salt)
		if err != nil {
			return err
		}
		u := model.User{Username: username, PasswordHash: hash, Salt: salt}
		if err := s.store.AppendUser(ctx, &u); err != nil {
			return fmt.Errorf("append user: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		log.Warn().Str("username", username).Msg("default user created; change its password")
	}
	return created, nil
}

func (s *authService) generateToken(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      username,
		"username": username,
		"jti":      uuid.NewString(),
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
