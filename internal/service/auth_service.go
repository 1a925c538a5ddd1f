// Package service implements the operations callers invoke: account and
// session management, group code management and billing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/wattcount/internal/auth"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/repository"
	"github.com/mmynk/wattcount/internal/storage"
)

// Session is an issued token and the profile it belongs to.
type Session struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

// AuthService registers users, logs them in and tracks the current session.
type AuthService struct {
	repos         *repository.Repositories
	store         *storage.RecordStore
	authenticator auth.Authenticator
	tokens        auth.TokenCodec
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(repos *repository.Repositories, store *storage.RecordStore, authenticator auth.Authenticator, tokens auth.TokenCodec, logger *slog.Logger) *AuthService {
	return &AuthService{
		repos:         repos,
		store:         store,
		authenticator: authenticator,
		tokens:        tokens,
		logger:        logger,
	}
}

// Register creates a primary user together with the group code members use
// to join. The user's group code and the stored code are identical.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*Session, error) {
	s.logger.Info("Register request received", "username", reg.Username)

	if err := s.validateRegistration(reg); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, reg.Username, reg.PhoneNumber); err != nil {
		s.logger.Warn("Registration rejected", "username", reg.Username, "error", err)
		return nil, err
	}

	code, err := s.repos.GroupCodes.Allocate(ctx)
	if err != nil {
		s.logger.Error("Failed to allocate group code", "username", reg.Username, "error", err)
		return nil, err
	}
	password, err := s.authenticator.HashCredential(reg.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users.Create(ctx, models.User{
		Username:    reg.Username,
		PhoneNumber: reg.PhoneNumber,
		FullName:    reg.FullName,
		Password:    password,
		Role:        models.RolePrimary,
		GroupCode:   code,
	})
	if err != nil {
		s.logger.Error("Registration failed", "username", reg.Username, "error", err)
		return nil, err
	}
	if _, err := s.repos.GroupCodes.CreateWithCode(ctx, code, user.ID, nil); err != nil {
		s.logger.Error("Failed to store group code", "user_id", user.ID, "code", code, "error", err)
		return nil, fmt.Errorf("failed to store group code: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "group_code", code)
	return s.startSession(ctx, user)
}

// Login authenticates a user and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	s.logger.Info("Login request received", "username", username)

	if username == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}
	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Warn("Login failed", "username", username, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.startSession(ctx, user)
}

// ConnectWithCode creates a member user joined to the group of the code's
// owner and consumes the code.
func (s *AuthService) ConnectWithCode(ctx context.Context, reg models.CodeRegistration) (*Session, error) {
	s.logger.Info("ConnectWithCode request received", "username", reg.Username)

	if strings.TrimSpace(reg.Code) == "" {
		return nil, models.ErrMissingCode
	}
	code := models.NormalizeCode(reg.Code)
	if len(code) != models.CodeLength {
		return nil, models.ErrInvalidCodeFormat
	}

	gc, err := s.repos.GroupCodes.FindUsable(ctx, code)
	if err != nil {
		return nil, err
	}
	if gc == nil {
		err := s.explainUnusable(ctx, code)
		s.logger.Warn("Group code rejected", "code", code, "error", err)
		return nil, err
	}

	if err := s.validateRegistration(reg.Registration); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, reg.Username, reg.PhoneNumber); err != nil {
		s.logger.Warn("Registration rejected", "username", reg.Username, "error", err)
		return nil, err
	}
	password, err := s.authenticator.HashCredential(reg.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users.Create(ctx, models.User{
		Username:    reg.Username,
		PhoneNumber: reg.PhoneNumber,
		FullName:    reg.FullName,
		Password:    password,
		Role:        models.RoleMember,
		GroupCode:   code,
	})
	if err != nil {
		s.logger.Error("Registration failed", "username", reg.Username, "error", err)
		return nil, err
	}
	used, err := s.repos.GroupCodes.MarkUsed(ctx, code, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark group code used: %w", err)
	}
	if !used {
		s.logger.Warn("Group code was consumed concurrently", "code", code, "user_id", user.ID)
	}

	s.logger.Info("Member connected", "user_id", user.ID, "owner_id", gc.OwnerID)
	return s.startSession(ctx, user)
}

// explainUnusable tells apart a used, an expired and an unknown code.
func (s *AuthService) explainUnusable(ctx context.Context, code string) error {
	gc, err := s.repos.GroupCodes.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	switch {
	case gc == nil:
		return models.ErrCodeNotFound
	case gc.Used:
		return models.ErrCodeUsed
	case gc.Expired(s.repos.Now()):
		return models.ErrCodeExpired
	default:
		return models.ErrCodeRejected
	}
}

// GetProfile returns the public view of a user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// Resume parses a presented token and loads the profile it names.
// Deactivated accounts cannot resume.
func (s *AuthService) Resume(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, models.ErrAccountDeactivated
	}
	return &Session{Token: token, User: user.Profile()}, nil
}

// CurrentSession resumes the token held in the session slot. Returns nil,
// nil when nobody is logged in.
func (s *AuthService) CurrentSession(ctx context.Context) (*Session, error) {
	token, err := s.store.Session(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	return s.Resume(ctx, token)
}

// Logout clears the session slot.
func (s *AuthService) Logout(ctx context.Context) error {
	s.logger.Info("Logout request received")
	return s.store.ClearSession(ctx)
}

// startSession issues a token for user and records it in the session slot.
// A failure to record the token does not fail the caller's operation.
func (s *AuthService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, s.repos.Now())
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, err
	}
	if err := s.store.SetSession(ctx, token); err != nil {
		s.logger.Warn("Failed to record session", "user_id", user.ID, "error", err)
	}
	return &Session{Token: token, User: user.Profile()}, nil
}

func (s *AuthService) validateRegistration(reg models.Registration) error {
	if strings.TrimSpace(reg.Username) == "" {
		return fmt.Errorf("%w: username is required", models.ErrValidation)
	}
	if strings.TrimSpace(reg.PhoneNumber) == "" {
		return fmt.Errorf("%w: phone number is required", models.ErrValidation)
	}
	return s.authenticator.ValidateCredential(reg.Password)
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, phone string) error {
	existing, err := s.repos.Users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.ErrDuplicateUsername
	}
	existing, err = s.repos.Users.FindByPhoneNumber(ctx, phone)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.ErrDuplicatePhone
	}
	return nil
}
