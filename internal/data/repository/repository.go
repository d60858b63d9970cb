package repository

import (
	"context"
	"errors"

	"resort-booking/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicateConfirmation is returned when a confirmation number collides.
var ErrDuplicateConfirmation = errors.New("confirmation number already issued")

const uniqueViolation = "23505"

// Transactor runs fn with a Repository whose members all share one
// transaction. The transaction commits only if fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

type Repository struct {
	Resource        ResourceRepository
	ManualBlock     ManualBlockRepository
	Guest           GuestRepository
	Reservation     ReservationRepository
	ReservationItem ReservationItemRepository
	ExternalBooking ExternalBookingRepository
	Payment         PaymentRepository
	Setting         SettingRepository
	Tx              Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.Tx = &pgTransactor{db: db, log: log}
	return repo
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Resource:        NewResourceRepository(q, log),
		ManualBlock:     NewManualBlockRepository(q, log),
		Guest:           NewGuestRepository(q, log),
		Reservation:     NewReservationRepository(q, log),
		ReservationItem: NewReservationItemRepository(q, log),
		ExternalBooking: NewExternalBookingRepository(q, log),
		Payment:         NewPaymentRepository(q, log),
		Setting:         NewSettingRepository(q, log),
	}
}

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	return database.RunInTx(ctx, t.db, func(q database.Querier) error {
		txRepo := newRepository(q, t.log)
		txRepo.Tx = inTx{repo: txRepo}
		return fn(txRepo)
	})
}

// inTx reuses the already open transaction instead of nesting.
type inTx struct {
	repo *Repository
}

func (t inTx) WithinTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(t.repo)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
