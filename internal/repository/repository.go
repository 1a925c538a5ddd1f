// Package repository implements the entity repositories on top of the record
// store: users, group codes, consumption readings, bills, payments and rates.
//
// Every write reads the whole collection, changes it in memory and writes it
// back. When the write fails the change is dropped and ErrPersistence is
// returned; nothing is retried.
package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/wattcount/internal/idgen"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// Clock returns the current time.
type Clock func() time.Time

type base struct {
	store  *storage.RecordStore
	ids    *idgen.Generator
	now    Clock
	logger *slog.Logger
}

// Option configures the repositories.
type Option func(*base)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(b *base) { b.now = c }
}

// WithIDGenerator replaces the default identifier and group code generator.
func WithIDGenerator(g *idgen.Generator) Option {
	return func(b *base) { b.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.logger = l }
}

// Repositories groups one repository per collection over a shared store.
type Repositories struct {
	Users       *UserRepository
	GroupCodes  *GroupCodeRepository
	Consumption *ConsumptionRepository
	Bills       *BillRepository
	Payments    *PaymentRepository
	Rates       *RateRepository
}

// New creates the repositories over store.
func New(store *storage.RecordStore, opts ...Option) *Repositories {
	b := &base{
		store:  store,
		ids:    idgen.New(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return &Repositories{
		Users:       &UserRepository{base: b},
		GroupCodes:  &GroupCodeRepository{base: b},
		Consumption: &ConsumptionRepository{base: b},
		Bills:       &BillRepository{base: b},
		Payments:    &PaymentRepository{base: b},
		Rates:       &RateRepository{base: b},
	}
}

// Now returns the repositories' notion of the current time.
func (r *Repositories) Now() time.Time {
	return r.Users.now()
}

func (b *base) users(ctx context.Context) ([]models.User, error) {
	return storage.Read[models.User](ctx, b.store, storage.Users)
}

func (b *base) codes(ctx context.Context) ([]models.GroupCode, error) {
	return storage.Read[models.GroupCode](ctx, b.store, storage.GroupCodes)
}

func (b *base) readings(ctx context.Context) ([]models.ConsumptionRecord, error) {
	return storage.Read[models.ConsumptionRecord](ctx, b.store, storage.Consumption)
}

func (b *base) bills(ctx context.Context) ([]models.Bill, error) {
	return storage.Read[models.Bill](ctx, b.store, storage.Bills)
}

func (b *base) payments(ctx context.Context) ([]models.Payment, error) {
	return storage.Read[models.Payment](ctx, b.store, storage.Payments)
}

func (b *base) rates(ctx context.Context) ([]models.Rate, error) {
	return storage.Read[models.Rate](ctx, b.store, storage.Rates)
}

// indexOf returns the index of the first item matching, or -1.
func indexOf[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}

// truncate keeps the first limit items; limit <= 0 keeps everything.
func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
