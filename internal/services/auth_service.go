package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"expensebuddy/internal/models"
	"expensebuddy/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers accounts and authenticates credential pairs.
type AuthService struct {
	userRepo   repositories.UserRepository
	bcryptCost int
	log        logrus.FieldLogger
}

// NewAuthService creates a new AuthService hashing passwords at the given bcrypt cost.
func NewAuthService(userRepo repositories.UserRepository, bcryptCost int, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register creates a new account and returns its session.
// A taken username yields ErrDuplicateUsername and leaves the existing account untouched.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.Session, error) {
	if username == "" || password == "" {
		return models.Session{}, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), s.bcryptCost)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return models.Session{}, ErrDuplicateUsername
		}
		return models.Session{}, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return models.Session{UserID: user.ID, Username: user.Username}, nil
}

// Authenticate checks a username/password pair and returns the matching session.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.Session, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Session{}, ErrInvalidCredentials
		}
		return models.Session{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest(password)); err != nil {
		s.log.WithField("user_id", user.ID).Warn("Rejected login attempt")
		return models.Session{}, ErrInvalidCredentials
	}

	return models.Session{UserID: user.ID, Username: user.Username}, nil
}

// Resolve confirms the session's user still exists and returns the session as stored.
// A token for a user that is gone yields ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, session models.Session) (models.Session, error) {
	if !session.Valid() {
		return models.Session{}, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Session{}, ErrUnauthenticated
		}
		return models.Session{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	return models.Session{UserID: user.ID, Username: user.Username}, nil
}

// passwordDigest feeds bcrypt a fixed 44 byte input so passphrases beyond bcrypt's 72 byte
// limit are accepted and compared in full.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
