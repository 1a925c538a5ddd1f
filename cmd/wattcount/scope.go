package main

import (
	"context"
	"slices"

	"github.com/mmynk/wattcount/internal/middleware"
	"github.com/mmynk/wattcount/internal/models"
)

// visibleBills returns the bills the caller may see. A primary sees its
// whole group; a member sees what its group's primary sees.
func (c *cli) visibleBills(ctx context.Context) ([]models.BillView, error) {
	userID := middleware.GetUserID(ctx)
	if middleware.GetRole(ctx) == models.RolePrimary {
		return c.app.repos.Bills.GetAll(ctx, userID)
	}
	return c.app.repos.Bills.GetMy(ctx, userID, 0)
}

// findVisibleBill returns bill id if the caller may see it.
func (c *cli) findVisibleBill(ctx context.Context, id string) (*models.BillView, error) {
	views, err := c.visibleBills(ctx)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].ID == id {
			return &views[i], nil
		}
	}
	return nil, models.ErrBillNotFound
}

// targetUser resolves the user a primary acts for. Empty means the caller.
// The target must be the caller or one of its group members.
func (c *cli) targetUser(ctx context.Context, target string) (string, error) {
	userID := middleware.GetUserID(ctx)
	if target == "" || target == userID {
		return userID, nil
	}
	if middleware.GetRole(ctx) != models.RolePrimary {
		return "", models.ErrForbidden
	}
	ids, err := c.app.repos.GroupCodes.VisibleUserIDs(ctx, userID)
	if err != nil {
		return "", err
	}
	if !slices.Contains(ids, target) {
		return "", models.ErrUserNotFound
	}
	return target, nil
}

// scopeOwner returns the primary whose group the caller sees. ok is false
// for a member whose code no longer resolves.
func (c *cli) scopeOwner(ctx context.Context) (string, bool, error) {
	user, err := c.app.repos.Users.GetByID(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return "", false, err
	}
	return c.app.repos.GroupCodes.ResolvePrimary(ctx, user)
}

// billsOfCycle returns the visible bills of one billing cycle.
func (c *cli) billsOfCycle(ctx context.Context, cycle string) ([]models.BillView, error) {
	owner, ok, err := c.scopeOwner(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.app.repos.Bills.GetByCycle(ctx, cycle, owner)
	}
	views, err := c.visibleBills(ctx)
	if err != nil {
		return nil, err
	}
	own := []models.BillView{}
	for _, v := range views {
		if v.BillingCycle == cycle {
			own = append(own, v)
		}
	}
	return own, nil
}
