package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmynk/wattcount/internal/calculator"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// ConsumptionRepository manages meter readings.
type ConsumptionRepository struct {
	*base
}

// Create stores a reading. The consumed energy is derived from the two meter
// readings; a missing reading date defaults to today.
func (r *ConsumptionRepository) Create(ctx context.Context, rec models.ConsumptionRecord) (*models.ConsumptionRecord, error) {
	if rec.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", models.ErrValidation)
	}
	kwh, err := calculator.Consumption(rec.PreviousReading, rec.CurrentReading)
	if err != nil {
		return nil, err
	}

	records, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if rec.ReadingDate.IsZero() {
		rec.ReadingDate = models.DateOf(now)
	}
	rec.ID = r.ids.NewID()
	rec.ConsumptionKWh = kwh
	rec.CreatedAt = now
	rec.UpdatedAt = now

	records = append(records, rec)
	if err := storage.Write(ctx, r.store, storage.Consumption, records); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update applies the non-nil fields of update. Changing either meter reading
// recomputes the consumed energy.
func (r *ConsumptionRepository) Update(ctx context.Context, id string, update models.ConsumptionUpdate) (*models.ConsumptionRecord, error) {
	records, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, func(c *models.ConsumptionRecord) bool { return c.ID == id })
	if i < 0 {
		return nil, models.ErrConsumptionNotFound
	}

	rec := records[i]
	if update.ReadingDate != nil {
		rec.ReadingDate = *update.ReadingDate
	}
	if update.Notes != nil {
		rec.Notes = *update.Notes
	}
	if update.PreviousReading != nil || update.CurrentReading != nil {
		if update.PreviousReading != nil {
			rec.PreviousReading = *update.PreviousReading
		}
		if update.CurrentReading != nil {
			rec.CurrentReading = *update.CurrentReading
		}
		kwh, err := calculator.Consumption(rec.PreviousReading, rec.CurrentReading)
		if err != nil {
			return nil, err
		}
		rec.ConsumptionKWh = kwh
	}
	rec.UpdatedAt = r.now()

	records[i] = rec
	if err := storage.Write(ctx, r.store, storage.Consumption, records); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the reading. Bills referencing it keep their own figures.
func (r *ConsumptionRepository) Delete(ctx context.Context, id string) error {
	records, err := r.readings(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.ConsumptionRecord, 0, len(records))
	for _, c := range records {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return storage.Write(ctx, r.store, storage.Consumption, kept)
}

// GetByID returns the reading joined with its owner's names.
func (r *ConsumptionRepository) GetByID(ctx context.Context, id string) (*models.ConsumptionView, error) {
	records, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, func(c *models.ConsumptionRecord) bool { return c.ID == id })
	if i < 0 {
		return nil, models.ErrConsumptionNotFound
	}
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	views := enrichReadings(records[i:i+1], users)
	return &views[0], nil
}

// GetLatestByUser returns the user's reading with the latest reading date,
// or nil if the user has none. Ties go to the reading stored first.
func (r *ConsumptionRepository) GetLatestByUser(ctx context.Context, userID string) (*models.ConsumptionRecord, error) {
	records, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}
	var latest *models.ConsumptionRecord
	for i := range records {
		c := &records[i]
		if c.UserID != userID {
			continue
		}
		if latest == nil || c.ReadingDate.After(latest.ReadingDate) {
			latest = c
		}
	}
	return latest, nil
}

// GetMy returns the user's own readings, latest reading date first.
// A positive limit keeps only that many.
func (r *ConsumptionRepository) GetMy(ctx context.Context, userID string, limit int) ([]models.ConsumptionView, error) {
	records, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	own := []models.ConsumptionRecord{}
	for _, c := range records {
		if c.UserID == userID {
			own = append(own, c)
		}
	}
	return truncate(newestFirst(enrichReadings(own, users)), limit), nil
}

// GetAll returns readings joined with owner names in storage order. With a
// non-empty primaryID only readings of the primary and its
// group members are returned.
func (r *ConsumptionRepository) GetAll(ctx context.Context, primaryID string) ([]models.ConsumptionView, error) {
	records, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	if primaryID != "" {
		codes, err := r.codes(ctx)
		if err != nil {
			return nil, err
		}
		visible := visibleSet(users, codes, primaryID)
		filtered := []models.ConsumptionRecord{}
		for _, c := range records {
			if visible[c.UserID] {
				filtered = append(filtered, c)
			}
		}
		records = filtered
	}
	return enrichReadings(records, users), nil
}

func enrichReadings(records []models.ConsumptionRecord, users []models.User) []models.ConsumptionView {
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	views := make([]models.ConsumptionView, 0, len(records))
	for _, c := range records {
		v := models.ConsumptionView{ConsumptionRecord: c}
		if u := byID[c.UserID]; u != nil {
			v.Username = u.Username
			v.FullName = u.FullName
		}
		views = append(views, v)
	}
	return views
}

// newestFirst orders views by reading date, latest first, keeping storage
// order among equal dates.
func newestFirst(views []models.ConsumptionView) []models.ConsumptionView {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].ReadingDate.After(views[j].ReadingDate)
	})
	return views
}
