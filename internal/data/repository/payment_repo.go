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

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByGatewayRef(ctx context.Context, ref string) (*entity.Payment, error)
	FindByGatewayRefForUpdate(ctx context.Context, ref string) (*entity.Payment, error)
	FindByReservationID(ctx context.Context, reservationID entity.ReservationID) ([]*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error

	// SumPaid totals every paid payment of the reservation.
	SumPaid(ctx context.Context, reservationID entity.ReservationID) (float64, error)
}

type paymentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPaymentRepository(db database.Querier, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, reservation_id, gateway_ref, method, status, amount, currency, failure_reason, processed_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.ReservationID,
		&p.GatewayRef,
		&p.Method,
		&p.Status,
		&p.Amount,
		&p.Currency,
		&p.FailureReason,
		&p.ProcessedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, reservation_id, gateway_ref, method, status, amount, currency, failure_reason, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.ReservationID,
		p.GatewayRef,
		p.Method,
		p.Status,
		p.Amount,
		p.Currency,
		p.FailureReason,
		p.ProcessedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.Stringer("reservation_id", p.ReservationID),
			zap.String("gateway_ref", p.GatewayRef),
		)
		return fmt.Errorf("create payment %s: %w", p.GatewayRef, err)
	}

	return nil
}

func (r *paymentRepository) FindByGatewayRef(ctx context.Context, ref string) (*entity.Payment, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_ref = $1`, ref)
}

func (r *paymentRepository) FindByGatewayRefForUpdate(ctx context.Context, ref string) (*entity.Payment, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_ref = $1 FOR UPDATE`, ref)
}

func (r *paymentRepository) findOne(ctx context.Context, query, ref string) (*entity.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, query, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by gateway ref",
			zap.Error(err),
			zap.String("gateway_ref", ref),
		)
		return nil, fmt.Errorf("find payment by ref %s: %w", ref, err)
	}
	return p, nil
}

func (r *paymentRepository) FindByReservationID(ctx context.Context, reservationID entity.ReservationID) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, reservationID)
	if err != nil {
		r.log.Error("Failed to list payments",
			zap.Error(err),
			zap.Stringer("reservation_id", reservationID),
		)
		return nil, fmt.Errorf("list payments for reservation %s: %w", reservationID, err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func (r *paymentRepository) Update(ctx context.Context, p *entity.Payment) error {
	query := `
		UPDATE payments
		SET gateway_ref = $2, status = $3, failure_reason = $4, processed_at = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.GatewayRef,
		p.Status,
		p.FailureReason,
		p.ProcessedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update payment",
			zap.Error(err),
			zap.Stringer("payment_id", p.ID),
			zap.String("status", string(p.Status)),
		)
		return fmt.Errorf("update payment %s: %w", p.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found", p.ID)
	}

	return nil
}

func (r *paymentRepository) SumPaid(ctx context.Context, reservationID entity.ReservationID) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE reservation_id = $1 AND status = 'paid'`

	var total float64
	if err := r.db.QueryRow(ctx, query, reservationID).Scan(&total); err != nil {
		r.log.Error("Failed to sum paid payments",
			zap.Error(err),
			zap.Stringer("reservation_id", reservationID),
		)
		return 0, fmt.Errorf("sum payments for reservation %s: %w", reservationID, err)
	}
	return total, nil
}
