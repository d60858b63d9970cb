package repository

import (
	"context"
	"errors"
	"fmt"

	"resort-booking/internal/data/entity"
	"resort-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type GuestRepository interface {
	// Upsert inserts the guest or, when the email exists, refreshes name and
	// phone and loads the existing ID into guest.
	Upsert(ctx context.Context, guest *entity.Guest) error
	FindByID(ctx context.Context, id entity.GuestID) (*entity.Guest, error)
}

type guestRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewGuestRepository(db database.Querier, log *zap.Logger) GuestRepository {
	return &guestRepository{
		db:  db,
		log: log.With(zap.String("repository", "guest")),
	}
}

func (r *guestRepository) Upsert(ctx context.Context, guest *entity.Guest) error {
	query := `
		INSERT INTO guests (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		guest.ID,
		guest.Name,
		guest.Email,
		guest.Phone,
		guest.CreatedAt,
		guest.UpdatedAt,
	).Scan(&guest.ID, &guest.CreatedAt)

	if err != nil {
		r.log.Error("Failed to upsert guest",
			zap.Error(err),
			zap.String("email", guest.Email),
		)
		return fmt.Errorf("upsert guest %s: %w", guest.Email, err)
	}

	return nil
}

func (r *guestRepository) FindByID(ctx context.Context, id entity.GuestID) (*entity.Guest, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM guests WHERE id = $1`

	var g entity.Guest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.Email,
		&g.Phone,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find guest by ID",
			zap.Error(err),
			zap.Stringer("guest_id", id),
		)
		return nil, fmt.Errorf("find guest by ID %s: %w", id, err)
	}

	return &g, nil
}
