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

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id entity.ReservationID) (*entity.Reservation, error)
	FindByConfirmationNumber(ctx context.Context, number string) (*entity.Reservation, error)

	// FindByIDForUpdate locks the reservation row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id entity.ReservationID) (*entity.Reservation, error)
	UpdateStatus(ctx context.Context, reservation *entity.Reservation) error
}

type reservationRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReservationRepository(db database.Querier, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, confirmation_number, guest_id, status, payment_status, total_amount, currency, notes, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID,
		&res.ConfirmationNumber,
		&res.GuestID,
		&res.Status,
		&res.PaymentStatus,
		&res.TotalAmount,
		&res.Currency,
		&res.Notes,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, confirmation_number, guest_id, status, payment_status, total_amount, currency, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		reservation.ID,
		reservation.ConfirmationNumber,
		reservation.GuestID,
		reservation.Status,
		reservation.PaymentStatus,
		reservation.TotalAmount,
		reservation.Currency,
		reservation.Notes,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)

	if isUniqueViolation(err, "reservations_confirmation_number_key") {
		r.log.Warn("Confirmation number collision",
			zap.String("confirmation_number", reservation.ConfirmationNumber),
		)
		return ErrDuplicateConfirmation
	}
	if err != nil {
		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("confirmation_number", reservation.ConfirmationNumber),
			zap.Stringer("guest_id", reservation.GuestID),
		)
		return fmt.Errorf("create reservation %s: %w", reservation.ConfirmationNumber, err)
	}

	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id entity.ReservationID) (*entity.Reservation, error) {
	return r.findOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id, "ID")
}

func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, id entity.ReservationID) (*entity.Reservation, error) {
	return r.findOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id, "ID for update")
}

func (r *reservationRepository) FindByConfirmationNumber(ctx context.Context, number string) (*entity.Reservation, error) {
	return r.findOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_number = $1`, number, "confirmation number")
}

func (r *reservationRepository) findOne(ctx context.Context, query string, key any, by string) (*entity.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by "+by,
			zap.Error(err),
			zap.Any("key", key),
		)
		return nil, fmt.Errorf("find reservation by %s %v: %w", by, key, err)
	}
	return res, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $2, payment_status = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		reservation.ID,
		reservation.Status,
		reservation.PaymentStatus,
		reservation.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update reservation status",
			zap.Error(err),
			zap.Stringer("reservation_id", reservation.ID),
			zap.String("status", string(reservation.Status)),
			zap.String("payment_status", string(reservation.PaymentStatus)),
		)
		return fmt.Errorf("update reservation %s status: %w", reservation.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s not found", reservation.ID)
	}

	return nil
}
