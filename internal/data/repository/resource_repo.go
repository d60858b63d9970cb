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

type ResourceRepository interface {
	FindByID(ctx context.Context, id entity.ResourceID) (*entity.Resource, error)

	// FindByIDForUpdate locks the resource row, serializing confirmations that
	// compete for the same inventory.
	FindByIDForUpdate(ctx context.Context, id entity.ResourceID) (*entity.Resource, error)
	FindByChannelMapping(ctx context.Context, platform, propertyCode, roomCode string) (*entity.Resource, error)
}

type resourceRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewResourceRepository(db database.Querier, log *zap.Logger) ResourceRepository {
	return &resourceRepository{
		db:  db,
		log: log.With(zap.String("repository", "resource")),
	}
}

const resourceColumns = `r.id, r.parent_id, r.kind, r.name, r.capacity, r.is_active, r.created_at, r.updated_at`

func scanResource(row pgx.Row) (*entity.Resource, error) {
	var res entity.Resource
	err := row.Scan(
		&res.ID,
		&res.ParentID,
		&res.Kind,
		&res.Name,
		&res.Capacity,
		&res.IsActive,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepository) FindByID(ctx context.Context, id entity.ResourceID) (*entity.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.id = $1`

	res, err := scanResource(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find resource by ID",
			zap.Error(err),
			zap.Stringer("resource_id", id),
		)
		return nil, fmt.Errorf("find resource by ID %s: %w", id, err)
	}

	return res, nil
}

func (r *resourceRepository) FindByIDForUpdate(ctx context.Context, id entity.ResourceID) (*entity.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.id = $1 FOR UPDATE`

	res, err := scanResource(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock resource",
			zap.Error(err),
			zap.Stringer("resource_id", id),
		)
		return nil, fmt.Errorf("lock resource %s: %w", id, err)
	}

	return res, nil
}

func (r *resourceRepository) FindByChannelMapping(ctx context.Context, platform, propertyCode, roomCode string) (*entity.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources r
		INNER JOIN resource_channel_mappings m ON m.resource_id = r.id
		WHERE m.platform = $1 AND m.external_property_code = $2 AND m.external_room_code = $3
	`

	res, err := scanResource(r.db.QueryRow(ctx, query, platform, propertyCode, roomCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find resource by channel mapping",
			zap.Error(err),
			zap.String("platform", platform),
			zap.String("property_code", propertyCode),
			zap.String("room_code", roomCode),
		)
		return nil, fmt.Errorf("find resource by mapping %s/%s/%s: %w", platform, propertyCode, roomCode, err)
	}

	return res, nil
}
