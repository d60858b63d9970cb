package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ExternalBookingRepository interface {
	// Insert stores the booking unless (platform, external_id) already exists.
	// inserted is false when the row was already there.
	Insert(ctx context.Context, booking *entity.ExternalBooking) (inserted bool, err error)
	FindByExternalIDForUpdate(ctx context.Context, platform, externalID string) (*entity.ExternalBooking, error)
	Update(ctx context.Context, booking *entity.ExternalBooking) error
	FindActiveOverlapping(ctx context.Context, resourceID entity.ResourceID, window entity.DateRange) ([]*entity.ExternalBooking, error)

	// LockExternalID serializes every event for one (platform, external_id)
	// until the transaction ends, whether or not a row exists yet.
	LockExternalID(ctx context.Context, platform, externalID string) error
	// RecordTombstone remembers a cancellation for a booking never seen here.
	// The latest cancellation time wins.
	RecordTombstone(ctx context.Context, platform, externalID string, cancelledAt time.Time) error
	// FindTombstone returns when the booking was cancelled, or nil.
	FindTombstone(ctx context.Context, platform, externalID string) (*time.Time, error)
}

type externalBookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewExternalBookingRepository(db database.Querier, log *zap.Logger) ExternalBookingRepository {
	return &externalBookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "external_booking")),
	}
}

const externalBookingColumns = `id, platform, external_id, resource_id, reservation_id, start_date, end_date, units,
	guest_name, guest_email, guest_phone, amount, currency, status, last_sync_at, created_at, updated_at`

func scanExternalBooking(row pgx.Row) (*entity.ExternalBooking, error) {
	var b entity.ExternalBooking
	err := row.Scan(
		&b.ID,
		&b.Platform,
		&b.ExternalID,
		&b.ResourceID,
		&b.ReservationID,
		&b.StartDate,
		&b.EndDate,
		&b.Units,
		&b.GuestName,
		&b.GuestEmail,
		&b.GuestPhone,
		&b.Amount,
		&b.Currency,
		&b.Status,
		&b.LastSyncAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *externalBookingRepository) Insert(ctx context.Context, b *entity.ExternalBooking) (bool, error) {
	query := `
		INSERT INTO external_bookings (id, platform, external_id, resource_id, reservation_id, start_date, end_date, units,
			guest_name, guest_email, guest_phone, amount, currency, status, last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (platform, external_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		b.ID,
		b.Platform,
		b.ExternalID,
		b.ResourceID,
		b.ReservationID,
		b.StartDate,
		b.EndDate,
		b.Units,
		b.GuestName,
		b.GuestEmail,
		b.GuestPhone,
		b.Amount,
		b.Currency,
		b.Status,
		b.LastSyncAt,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert external booking",
			zap.Error(err),
			zap.String("platform", b.Platform),
			zap.String("external_id", b.ExternalID),
		)
		return false, fmt.Errorf("insert external booking %s/%s: %w", b.Platform, b.ExternalID, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *externalBookingRepository) FindByExternalIDForUpdate(ctx context.Context, platform, externalID string) (*entity.ExternalBooking, error) {
	query := `SELECT ` + externalBookingColumns + `
		FROM external_bookings
		WHERE platform = $1 AND external_id = $2
		FOR UPDATE`

	b, err := scanExternalBooking(r.db.QueryRow(ctx, query, platform, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock external booking",
			zap.Error(err),
			zap.String("platform", platform),
			zap.String("external_id", externalID),
		)
		return nil, fmt.Errorf("find external booking %s/%s: %w", platform, externalID, err)
	}
	return b, nil
}

func (r *externalBookingRepository) Update(ctx context.Context, b *entity.ExternalBooking) error {
	query := `
		UPDATE external_bookings
		SET resource_id = $2, start_date = $3, end_date = $4, units = $5,
			guest_name = $6, guest_email = $7, guest_phone = $8,
			amount = $9, currency = $10, status = $11, last_sync_at = $12, updated_at = $13,
			reservation_id = $14
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		b.ID,
		b.ResourceID,
		b.StartDate,
		b.EndDate,
		b.Units,
		b.GuestName,
		b.GuestEmail,
		b.GuestPhone,
		b.Amount,
		b.Currency,
		b.Status,
		b.LastSyncAt,
		b.UpdatedAt,
		b.ReservationID,
	)
	if err != nil {
		r.log.Error("Failed to update external booking",
			zap.Error(err),
			zap.Stringer("id", b.ID),
			zap.String("external_id", b.ExternalID),
		)
		return fmt.Errorf("update external booking %s: %w", b.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("external booking %s not found", b.ID)
	}

	return nil
}

func (r *externalBookingRepository) FindActiveOverlapping(ctx context.Context, resourceID entity.ResourceID, window entity.DateRange) ([]*entity.ExternalBooking, error) {
	query := `SELECT ` + externalBookingColumns + `
		FROM external_bookings
		WHERE resource_id = $1
		  AND status <> 'cancelled'
		  AND start_date < $3 AND end_date > $2
		ORDER BY start_date`

	rows, err := r.db.Query(ctx, query, resourceID, window.Start, window.End)
	if err != nil {
		r.log.Error("Failed to find overlapping external bookings",
			zap.Error(err),
			zap.Stringer("resource_id", resourceID),
			zap.Stringer("window", window),
		)
		return nil, fmt.Errorf("find external bookings for resource %s: %w", resourceID, err)
	}
	defer rows.Close()

	var bookings []*entity.ExternalBooking
	for rows.Next() {
		b, err := scanExternalBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan external booking row", zap.Error(err))
			return nil, fmt.Errorf("scan external booking row: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

func (r *externalBookingRepository) LockExternalID(ctx context.Context, platform, externalID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`

	if _, err := r.db.Exec(ctx, query, platform, externalID); err != nil {
		r.log.Error("Failed to lock external id",
			zap.Error(err),
			zap.String("platform", platform),
			zap.String("external_id", externalID),
		)
		return fmt.Errorf("lock external booking %s/%s: %w", platform, externalID, err)
	}
	return nil
}

func (r *externalBookingRepository) RecordTombstone(ctx context.Context, platform, externalID string, cancelledAt time.Time) error {
	query := `
		INSERT INTO external_booking_tombstones (platform, external_id, cancelled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (platform, external_id)
		DO UPDATE SET cancelled_at = GREATEST(external_booking_tombstones.cancelled_at, EXCLUDED.cancelled_at)
	`

	if _, err := r.db.Exec(ctx, query, platform, externalID, cancelledAt); err != nil {
		r.log.Error("Failed to record tombstone",
			zap.Error(err),
			zap.String("platform", platform),
			zap.String("external_id", externalID),
		)
		return fmt.Errorf("record tombstone %s/%s: %w", platform, externalID, err)
	}
	return nil
}

func (r *externalBookingRepository) FindTombstone(ctx context.Context, platform, externalID string) (*time.Time, error) {
	query := `SELECT cancelled_at FROM external_booking_tombstones WHERE platform = $1 AND external_id = $2`

	var cancelledAt time.Time
	err := r.db.QueryRow(ctx, query, platform, externalID).Scan(&cancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tombstone",
			zap.Error(err),
			zap.String("platform", platform),
			zap.String("external_id", externalID),
		)
		return nil, fmt.Errorf("find tombstone %s/%s: %w", platform, externalID, err)
	}
	return &cancelledAt, nil
}
