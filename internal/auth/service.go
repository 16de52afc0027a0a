// Package auth registers users and maps bearer tokens to owner IDs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/storage"
)

var (
	ErrPhoneTaken      = errors.New("phone already registered")
	ErrUnknownPhone    = errors.New("phone not registered")
	ErrWrongPassword   = errors.New("wrong password")
	ErrUnauthenticated = errors.New("missing or expired token")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *storage.User) error
	SaveUser(ctx context.Context, user *storage.User) error
	GetUser(ctx context.Context, id string) (*storage.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*storage.User, error)
	FindUserByToken(ctx context.Context, token string) (*storage.User, error)
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *storage.User
}

type Service struct {
	store    UserStore
	tokenTTL time.Duration
	cost     int
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(store UserStore, tokenTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		logger:   log,
		now:      time.Now,
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Service) Register(ctx context.Context, phone, password string) (*storage.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, &ledger.ValidationError{Field: "phone", Reason: "is required"}
	}
	if password == "" {
		return nil, &ledger.ValidationError{Field: "password", Reason: "is required"}
	}

	if _, err := s.store.FindUserByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup phone: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := newID()
	user := &storage.User{
		ID:           id,
		Phone:        phone,
		PasswordHash: string(hash),
		Nickname:     "用户_" + id[:6],
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the password and rotates the user's bearer token.
func (s *Service) Login(ctx context.Context, phone, password string) (*Session, error) {
	user, err := s.store.FindUserByPhone(ctx, strings.TrimSpace(phone))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownPhone
	}
	if err != nil {
		return nil, fmt.Errorf("lookup phone: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	user.Token = newID()
	user.TokenExpires = s.now().Add(s.tokenTTL)
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return &Session{Token: user.Token, ExpiresAt: user.TokenExpires, User: user}, nil
}

// Authenticate resolves a bearer token to its owner.
func (s *Service) Authenticate(ctx context.Context, token string) (*storage.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.store.FindUserByToken(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if !s.now().Before(user.TokenExpires) {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*storage.User, error) {
	return s.store.GetUser(ctx, userID)
}
