// Package auth implements account signup, login and token verification
// over the account store. Tokens are HS256 JWTs carrying the user profile,
// matching the contract the frontend stores under its fixed storage keys.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abaanfida/unixora/internal/model/account"
	"github.com/abaanfida/unixora/internal/store"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrWeakPassword  = errors.New("password too weak")
	ErrEmailExists   = errors.New("email already exists")
	ErrEmailNotFound = errors.New("email not found")
	ErrWrongPassword = errors.New("incorrect password")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Profile is the public slice of an account embedded in responses and
// token claims.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Identity is a verified caller: the account id plus its profile.
type Identity struct {
	UserID string
	Profile
}

// Service issues and verifies credentials against the account store.
type Service struct {
	accounts   store.Accounts
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService builds an auth service signing tokens with secret for
// tokenTTL and hashing passwords at bcryptCost.
func NewService(accounts store.Accounts, secret string, tokenTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		accounts:   accounts,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a new account and returns a fresh token with the
// created profile.
func (s *Service) Signup(ctx context.Context, firstName, lastName, email, password string) (string, Profile, error) {
	if firstName == "" || email == "" || password == "" {
		return "", Profile{}, ErrMissingFields
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", Profile{}, ErrInvalidEmail
	}
	if !validPassword(password) {
		return "", Profile{}, ErrWeakPassword
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", Profile{}, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return "", Profile{}, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", Profile{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	acc := &account.Account{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", Profile{}, ErrEmailExists
		}
		return "", Profile{}, fmt.Errorf("create account: %w", err)
	}

	return s.issueToken(acc)
}

// Login verifies credentials and returns a fresh token with the profile.
func (s *Service) Login(ctx context.Context, email, password string) (string, Profile, error) {
	if email == "" || password == "" {
		return "", Profile{}, ErrMissingFields
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", Profile{}, ErrInvalidEmail
	}

	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", Profile{}, fmt.Errorf("lookup email: %w", err)
	}
	if acc == nil {
		return "", Profile{}, ErrEmailNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", Profile{}, ErrWrongPassword
	}

	return s.issueToken(acc)
}

// Verify parses a bearer token and returns the identity it carries.
func (s *Service) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	firstName, _ := claims["firstName"].(string)
	lastName, _ := claims["lastName"].(string)
	email, _ := claims["email"].(string)
	if id == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID: id,
		Profile: Profile{
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
		},
	}, nil
}

func (s *Service) issueToken(acc *account.Account) (string, Profile, error) {
	profile := Profile{
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Email:     acc.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":        acc.ID,
		"email":     acc.Email,
		"firstName": acc.FirstName,
		"lastName":  acc.LastName,
		"exp":       time.Now().Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", Profile{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, profile, nil
}

// validPassword requires at least 8 characters including a letter, a digit
// and a special character.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}
