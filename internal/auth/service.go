package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/drawdeck/drawdeck/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

const tokenTTL = 24 * time.Hour

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type account struct {
	user         User
	passwordHash string
}

// Service issues and validates board session tokens over an in-memory
// user registry. Accounts live for the lifetime of the process.
type Service struct {
	mu        sync.RWMutex
	byEmail   map[string]*account
	byID      map[string]*account
	jwtSecret []byte
}

func NewService(jwtSecret string) *Service {
	return &Service{
		byEmail:   make(map[string]*account),
		byID:      make(map[string]*account),
		jwtSecret: []byte(jwtSecret),
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Service) Register(email, password, displayName string) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	if _, taken := s.byEmail[email]; taken {
		s.mu.Unlock()
		return nil, ErrEmailTaken
	}
	acct := &account{
		user: User{
			ID:          typeid.NewUserID(),
			Email:       email,
			DisplayName: displayName,
		},
		passwordHash: string(hash),
	}
	s.byEmail[email] = acct
	s.byID[acct.user.ID] = acct
	s.mu.Unlock()

	token, err := s.issueToken(acct.user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: acct.user}, nil
}

func (s *Service) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	acct, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(acct.user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: acct.user}, nil
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token subject")
	}
	return userID, nil
}

func (s *Service) GetUserByEmail(email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	acct, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	u := acct.user
	return &u, nil
}

func (s *Service) GetUser(userID string) (*User, error) {
	s.mu.RLock()
	acct, ok := s.byID[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	u := acct.user
	return &u, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
