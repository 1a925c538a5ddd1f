package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// maxCodeAttempts bounds how many random codes Allocate draws before giving up.
const maxCodeAttempts = 10

// GroupCodeRepository manages the group_codes collection and resolves group
// membership from it.
type GroupCodeRepository struct {
	*base
}

// GetAll returns the codes owned by ownerID, or every code if ownerID is empty.
func (r *GroupCodeRepository) GetAll(ctx context.Context, ownerID string) ([]models.GroupCode, error) {
	codes, err := r.codes(ctx)
	if err != nil || ownerID == "" {
		return codes, err
	}
	owned := []models.GroupCode{}
	for _, c := range codes {
		if c.OwnerID == ownerID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

// Allocate draws a code that does not normalize equal to any stored code.
// Nothing is persisted.
func (r *GroupCodeRepository) Allocate(ctx context.Context) (string, error) {
	codes, err := r.codes(ctx)
	if err != nil {
		return "", err
	}
	return r.allocate(codes)
}

func (r *GroupCodeRepository) allocate(codes []models.GroupCode) (string, error) {
	taken := make(map[string]bool, len(codes))
	for _, c := range codes {
		taken[models.NormalizeCode(c.Code)] = true
	}
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := r.ids.NewGroupCode()
		if !taken[code] {
			return code, nil
		}
		r.logger.Debug("Group code collision", "attempt", attempt)
	}
	r.logger.Warn("Group code allocation exhausted", "attempts", maxCodeAttempts, "existing", len(codes))
	return "", models.ErrCodeExhausted
}

// Create allocates a fresh code for ownerID and stores it unused.
func (r *GroupCodeRepository) Create(ctx context.Context, ownerID string, expiresAt *time.Time) (*models.GroupCode, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", models.ErrValidation)
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return nil, err
	}
	code, err := r.allocate(codes)
	if err != nil {
		return nil, err
	}
	return r.insert(ctx, codes, code, ownerID, expiresAt)
}

// CreateWithCode stores a caller-chosen code for ownerID. The code is
// normalized first and must not collide with a stored code.
func (r *GroupCodeRepository) CreateWithCode(ctx context.Context, code, ownerID string, expiresAt *time.Time) (*models.GroupCode, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", models.ErrValidation)
	}
	norm := models.NormalizeCode(code)
	if len(norm) != models.CodeLength {
		return nil, models.ErrInvalidCodeFormat
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(codes, func(c *models.GroupCode) bool { return models.NormalizeCode(c.Code) == norm }) >= 0 {
		return nil, models.ErrCodeTaken
	}
	return r.insert(ctx, codes, norm, ownerID, expiresAt)
}

func (r *GroupCodeRepository) insert(ctx context.Context, codes []models.GroupCode, code, ownerID string, expiresAt *time.Time) (*models.GroupCode, error) {
	gc := models.GroupCode{
		ID:        r.ids.NewID(),
		Code:      code,
		OwnerID:   ownerID,
		ExpiresAt: expiresAt,
		CreatedAt: r.now(),
	}
	codes = append(codes, gc)
	if err := storage.Write(ctx, r.store, storage.GroupCodes, codes); err != nil {
		return nil, err
	}
	return &gc, nil
}

// FindUsable returns the first stored code equal to raw after normalization
// that is neither used nor expired. Returns nil, nil when raw does not
// normalize to CodeLength characters or no usable code matches.
func (r *GroupCodeRepository) FindUsable(ctx context.Context, raw string) (*models.GroupCode, error) {
	norm := models.NormalizeCode(raw)
	if len(norm) != models.CodeLength {
		return nil, nil
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now()
	i := indexOf(codes, func(c *models.GroupCode) bool {
		return models.NormalizeCode(c.Code) == norm && c.Usable(now)
	})
	if i < 0 {
		return nil, nil
	}
	return &codes[i], nil
}

// FindByCode returns the first stored code equal to raw after normalization,
// in any state. Used to explain why FindUsable found nothing.
func (r *GroupCodeRepository) FindByCode(ctx context.Context, raw string) (*models.GroupCode, error) {
	norm := models.NormalizeCode(raw)
	if norm == "" {
		return nil, nil
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(codes, func(c *models.GroupCode) bool { return models.NormalizeCode(c.Code) == norm })
	if i < 0 {
		return nil, nil
	}
	return &codes[i], nil
}

// MarkUsed flips the first code matching raw to used by userID. It matches
// regardless of expiry. It reports false without writing when no code
// matches or the code is already used, so UsedBy always names the first
// member that joined with the code.
func (r *GroupCodeRepository) MarkUsed(ctx context.Context, raw, userID string) (bool, error) {
	norm := models.NormalizeCode(raw)
	codes, err := r.codes(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(codes, func(c *models.GroupCode) bool { return models.NormalizeCode(c.Code) == norm })
	if i < 0 {
		r.logger.Warn("Group code not found to mark as used", "code", norm)
		return false, nil
	}
	if codes[i].Used {
		r.logger.Warn("Group code already used", "code", norm, "used_by", codes[i].UsedBy)
		return false, nil
	}

	codes[i].Used = true
	codes[i].UsedBy = userID
	if err := storage.Write(ctx, r.store, storage.GroupCodes, codes); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes every code matching raw. Deleting an unknown code is a no-op.
func (r *GroupCodeRepository) Delete(ctx context.Context, raw string) error {
	norm := models.NormalizeCode(raw)
	codes, err := r.codes(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.GroupCode, 0, len(codes))
	for _, c := range codes {
		if models.NormalizeCode(c.Code) != norm {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(codes) {
		return nil
	}
	return storage.Write(ctx, r.store, storage.GroupCodes, kept)
}

// VisibleUserIDs returns primaryID followed by the IDs of its group members.
func (r *GroupCodeRepository) VisibleUserIDs(ctx context.Context, primaryID string) ([]string, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return nil, err
	}
	ids := []string{primaryID}
	for _, m := range groupMembers(users, codes, primaryID) {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// ResolvePrimary returns the primary user whose data user sees. A primary
// resolves to itself; a member resolves to the owner of the code it joined
// with. ok is false for a member whose code no longer exists.
func (r *GroupCodeRepository) ResolvePrimary(ctx context.Context, user *models.User) (string, bool, error) {
	switch m := user.Membership().(type) {
	case models.Member:
		codes, err := r.codes(ctx)
		if err != nil {
			return "", false, err
		}
		owner, ok := ownerOf(codes, m.JoinedCode)
		return owner, ok, nil
	default:
		return user.ID, true, nil
	}
}
