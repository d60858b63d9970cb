package repository

import (
	"context"
	"fmt"

	"resort-booking/internal/data/entity"
	"resort-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OccupyingItem is a reservation item that holds inventory, joined with the
// owning reservation's public identifiers.
type OccupyingItem struct {
	Item               *entity.ReservationItem
	ConfirmationNumber string
	Status             entity.ReservationStatus
}

type ReservationItemRepository interface {
	CreateBatch(ctx context.Context, items []*entity.ReservationItem) error
	FindByReservationID(ctx context.Context, reservationID entity.ReservationID) ([]*entity.ReservationItem, error)

	// FindOccupying returns items on the resource whose reservation still holds
	// inventory and whose dates intersect window.
	FindOccupying(ctx context.Context, resourceID entity.ResourceID, window entity.DateRange) ([]*OccupyingItem, error)
}

type reservationItemRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReservationItemRepository(db database.Querier, log *zap.Logger) ReservationItemRepository {
	return &reservationItemRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation_item")),
	}
}

func (r *reservationItemRepository) CreateBatch(ctx context.Context, items []*entity.ReservationItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO reservation_items (id, reservation_id, item_type, resource_id, quantity, unit_price, amount, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.ReservationID,
			item.Type,
			item.ResourceID,
			item.Quantity,
			item.UnitPrice,
			item.Amount,
			item.StartDate,
			item.EndDate,
			item.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range items {
		if _, err := results.Exec(); err != nil {
			r.log.Error("Failed to create reservation item",
				zap.Error(err),
				zap.Stringer("reservation_id", item.ReservationID),
				zap.String("item_type", string(item.Type)),
			)
			return fmt.Errorf("create reservation item for %s: %w", item.ReservationID, err)
		}
	}

	return nil
}

func (r *reservationItemRepository) FindByReservationID(ctx context.Context, reservationID entity.ReservationID) ([]*entity.ReservationItem, error) {
	query := `
		SELECT id, reservation_id, item_type, resource_id, quantity, unit_price, amount, start_date, end_date, created_at
		FROM reservation_items
		WHERE reservation_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, reservationID)
	if err != nil {
		r.log.Error("Failed to find reservation items",
			zap.Error(err),
			zap.Stringer("reservation_id", reservationID),
		)
		return nil, fmt.Errorf("find items for reservation %s: %w", reservationID, err)
	}
	defer rows.Close()

	var items []*entity.ReservationItem
	for rows.Next() {
		var item entity.ReservationItem
		err := rows.Scan(
			&item.ID,
			&item.ReservationID,
			&item.Type,
			&item.ResourceID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Amount,
			&item.StartDate,
			&item.EndDate,
			&item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan reservation item row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation item row: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *reservationItemRepository) FindOccupying(ctx context.Context, resourceID entity.ResourceID, window entity.DateRange) ([]*OccupyingItem, error) {
	query := `
		SELECT i.id, i.reservation_id, i.item_type, i.resource_id, i.quantity, i.unit_price, i.amount,
		       i.start_date, i.end_date, i.created_at, res.confirmation_number, res.status
		FROM reservation_items i
		INNER JOIN reservations res ON res.id = i.reservation_id
		WHERE i.resource_id = $1
		  AND res.status IN ('pending', 'confirmed', 'completed')
		  AND i.start_date < $3 AND i.end_date > $2
		ORDER BY i.start_date
	`

	rows, err := r.db.Query(ctx, query, resourceID, window.Start, window.End)
	if err != nil {
		r.log.Error("Failed to find occupying reservation items",
			zap.Error(err),
			zap.Stringer("resource_id", resourceID),
			zap.Stringer("window", window),
		)
		return nil, fmt.Errorf("find occupying items for resource %s: %w", resourceID, err)
	}
	defer rows.Close()

	var occupying []*OccupyingItem
	for rows.Next() {
		var item entity.ReservationItem
		o := &OccupyingItem{Item: &item}
		err := rows.Scan(
			&item.ID,
			&item.ReservationID,
			&item.Type,
			&item.ResourceID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Amount,
			&item.StartDate,
			&item.EndDate,
			&item.CreatedAt,
			&o.ConfirmationNumber,
			&o.Status,
		)
		if err != nil {
			r.log.Error("Failed to scan occupying item row", zap.Error(err))
			return nil, fmt.Errorf("scan occupying item row: %w", err)
		}
		occupying = append(occupying, o)
	}

	return occupying, rows.Err()
}
