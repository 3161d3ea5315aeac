package shows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the Show Ledger accessor set. GetByIDForUpdate and
// AdjustBookedSeats take the enclosing transaction handle and must only be
// called inside a booking or reclaim transaction; they are not safe for
// ad-hoc concurrent use on the base connection.
type Repository interface {
	Create(ctx context.Context, show *Show) error
	GetByID(ctx context.Context, id uuid.UUID) (*Show, error)
	List(ctx context.Context) ([]Show, error)

	GetByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*Show, error)
	AdjustBookedSeats(tx *gorm.DB, id uuid.UUID, delta int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, show *Show) error {
	if err := r.db.WithContext(ctx).Create(show).Error; err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return &show, nil
}

// List returns all shows ordered by start time ascending.
func (r *repository) List(ctx context.Context) ([]Show, error) {
	var result []Show
	err := r.db.WithContext(ctx).
		Order("start_time ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return result, nil
}

// GetByIDForUpdate reads the show row with an exclusive row lock so no
// concurrent booking or reclaim can interleave on the same show.
func (r *repository) GetByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*Show, error) {
	var show Show
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to lock show: %w", err)
	}
	return &show, nil
}

// AdjustBookedSeats moves the booked counter by delta. The caller is expected
// to hold the row lock from GetByIDForUpdate in the same transaction; the DB
// check constraint rejects any adjustment that would leave the counter
// outside [0, total_seats].
func (r *repository) AdjustBookedSeats(tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.Model(&Show{}).
		Where("id = ?", id).
		UpdateColumn("booked_seats", gorm.Expr("booked_seats + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust booked seats: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrShowNotFound
	}
	return nil
}
