package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"example.com/ya-note/internal/stringsx"
)

// User is an account that owns notes.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
	// MaxPasswordLength is in bytes; bcrypt rejects longer input.
	MaxPasswordLength = 72
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// UserRepo is a dependency that must be stubbed in unit tests.
type UserRepo interface {
	ByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, username, passwordHash string) (User, error)
}

// Service contains account logic independent from transport/database.
type Service struct {
	repo UserRepo
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

func New(repo UserRepo) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// dummy is compared against when the username is unknown so both paths cost one bcrypt check.
func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ya-note-dummy-password"), s.cost)
	})
	return s.dummyHash
}

// Register creates a new user if the username is free and the password is acceptable.
func (s *Service) Register(ctx context.Context, username, password1, password2 string) (User, error) {
	username = strings.TrimSpace(username)
	if !isUsername(username) {
		return User{}, ErrInvalidUsername
	}
	if stringsx.Length(password1) < MinPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	if len(password1) > MaxPasswordLength {
		return User{}, ErrPasswordTooLong
	}
	if password1 != password2 {
		return User{}, ErrPasswordMismatch
	}

	// Check existing
	if _, err := s.repo.ByUsername(ctx, username); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password1), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, username, string(hash))
}

// Authenticate returns the user whose credentials match.
// Unknown users and wrong passwords yield the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func isUsername(s string) bool {
	if s == "" || stringsx.Length(s) > MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(s)
}
