package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/repository"
)

// GroupService manages the group codes of primary users.
type GroupService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(repos *repository.Repositories, logger *slog.Logger) *GroupService {
	return &GroupService{repos: repos, logger: logger}
}

// GenerateCode creates an extra code for primaryID. A positive ttl makes the
// code expire; zero never expires.
func (s *GroupService) GenerateCode(ctx context.Context, primaryID string, ttl time.Duration) (*models.GroupCode, error) {
	s.logger.Info("GenerateCode request received", "user_id", primaryID, "ttl", ttl)

	if _, err := s.requirePrimary(ctx, primaryID); err != nil {
		return nil, err
	}
	var expiresAt *time.Time
	if ttl > 0 {
		t := s.repos.Now().Add(ttl)
		expiresAt = &t
	}

	gc, err := s.repos.GroupCodes.Create(ctx, primaryID, expiresAt)
	if err != nil {
		s.logger.Error("GenerateCode failed", "user_id", primaryID, "error", err)
		return nil, err
	}
	s.logger.Info("Group code created", "user_id", primaryID, "code", gc.Code)
	return gc, nil
}

// ListCodes returns the codes owned by primaryID.
func (s *GroupService) ListCodes(ctx context.Context, primaryID string) ([]models.GroupCode, error) {
	if _, err := s.requirePrimary(ctx, primaryID); err != nil {
		return nil, err
	}
	return s.repos.GroupCodes.GetAll(ctx, primaryID)
}

// DeleteCode removes a code owned by primaryID. The code a primary
// registered with stays, so its user record always names a stored code.
func (s *GroupService) DeleteCode(ctx context.Context, primaryID, code string) error {
	s.logger.Info("DeleteCode request received", "user_id", primaryID, "code", code)

	user, err := s.requirePrimary(ctx, primaryID)
	if err != nil {
		return err
	}
	gc, err := s.repos.GroupCodes.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if gc == nil {
		return models.ErrCodeNotFound
	}
	if gc.OwnerID != primaryID {
		return models.ErrForbidden
	}
	if models.SameCode(gc.Code, user.GroupCode) {
		return fmt.Errorf("%w: the registration code of an account cannot be deleted", models.ErrValidation)
	}
	return s.repos.GroupCodes.Delete(ctx, code)
}

// Members returns the profiles of the users that joined primaryID's group.
func (s *GroupService) Members(ctx context.Context, primaryID string) ([]models.Profile, error) {
	if _, err := s.requirePrimary(ctx, primaryID); err != nil {
		return nil, err
	}
	members, err := s.repos.Users.ListGroupMembers(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.Profile, 0, len(members))
	for i := range members {
		profiles = append(profiles, members[i].Profile())
	}
	return profiles, nil
}

func (s *GroupService) requirePrimary(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := user.Membership().(models.Primary); !ok {
		return nil, models.ErrForbidden
	}
	return user, nil
}
