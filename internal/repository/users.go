package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// UserRepository manages the users collection.
type UserRepository struct {
	*base
}

// GetAll returns every user in storage order.
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	return r.users(ctx)
}

// GetByID returns the user with the given ID or ErrUserNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, func(u *models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, models.ErrUserNotFound
	}
	return &users[i], nil
}

// FindByUsername returns the user with an exactly matching username.
// Returns nil, nil if no user has it.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, func(u *models.User) bool { return u.Username == username })
	if i < 0 {
		return nil, nil
	}
	return &users[i], nil
}

// FindByPhoneNumber returns the user with an exactly matching phone number.
// Returns nil, nil if no user has it.
func (r *UserRepository) FindByPhoneNumber(ctx context.Context, phone string) (*models.User, error) {
	if phone == "" {
		return nil, nil
	}
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, func(u *models.User) bool { return u.PhoneNumber == phone })
	if i < 0 {
		return nil, nil
	}
	return &users[i], nil
}

// Create stores a new, active user. Username and phone number must not be
// taken by any other user.
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	if strings.TrimSpace(user.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", models.ErrValidation)
	}

	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkUnique(users, "", user.Username, user.PhoneNumber); err != nil {
		return nil, err
	}

	now := r.now()
	if user.ID == "" {
		user.ID = r.ids.NewID()
	}
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	users = append(users, user)
	if err := storage.Write(ctx, r.store, storage.Users, users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies the non-nil fields of update to the user with the given ID.
func (r *UserRepository) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, func(u *models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, models.ErrUserNotFound
	}

	user := users[i]
	if update.Username != nil {
		if strings.TrimSpace(*update.Username) == "" {
			return nil, fmt.Errorf("%w: username is required", models.ErrValidation)
		}
		user.Username = *update.Username
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	if update.GroupCode != nil {
		user.GroupCode = *update.GroupCode
	}
	if update.Active != nil {
		user.Active = *update.Active
	}
	if err := checkUnique(users, id, user.Username, user.PhoneNumber); err != nil {
		return nil, err
	}
	user.UpdatedAt = r.now()

	users[i] = user
	if err := storage.Write(ctx, r.store, storage.Users, users); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListGroupMembers returns the members that joined with any code owned by
// primaryID.
func (r *UserRepository) ListGroupMembers(ctx context.Context, primaryID string) ([]models.User, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return nil, err
	}
	return groupMembers(users, codes, primaryID), nil
}

// checkUnique reports a conflict if any user other than exceptID holds
// username or phone.
func checkUnique(users []models.User, exceptID, username, phone string) error {
	for _, u := range users {
		if exceptID != "" && u.ID == exceptID {
			continue
		}
		if u.Username == username {
			return models.ErrDuplicateUsername
		}
		if phone != "" && u.PhoneNumber == phone {
			return models.ErrDuplicatePhone
		}
	}
	return nil
}
