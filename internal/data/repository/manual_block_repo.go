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

type ManualBlockRepository interface {
	Create(ctx context.Context, block *entity.ManualBlock) error
	FindByID(ctx context.Context, id entity.ManualBlockID) (*entity.ManualBlock, error)
	Revoke(ctx context.Context, id entity.ManualBlockID, at time.Time) (bool, error)
	ListByParent(ctx context.Context, filter BlockFilter, limit, offset int) ([]*entity.ManualBlock, error)
	CountByParent(ctx context.Context, filter BlockFilter) (int64, error)

	// FindActiveOverlapping returns active blocks scoped to the resource itself
	// or hotel-wide on its parent that intersect window.
	FindActiveOverlapping(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]*entity.ManualBlock, error)
}

// BlockFilter selects the blocks of one parent. A nil Window matches every date.
type BlockFilter struct {
	ParentID   entity.ResourceID
	Window     *entity.DateRange
	ActiveOnly bool
}

const blockFilterClause = `
		WHERE parent_id = $1
		  AND (NOT $2 OR is_active)
		  AND ($3::date IS NULL OR (start_date < $4::date AND end_date > $3::date))`

func (f BlockFilter) args() []any {
	var start, end *time.Time
	if f.Window != nil {
		start, end = &f.Window.Start, &f.Window.End
	}
	return []any{f.ParentID, f.ActiveOnly, start, end}
}

type manualBlockRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewManualBlockRepository(db database.Querier, log *zap.Logger) ManualBlockRepository {
	return &manualBlockRepository{
		db:  db,
		log: log.With(zap.String("repository", "manual_block")),
	}
}

const manualBlockColumns = `id, parent_id, resource_id, start_date, end_date, block_type, reason, is_active, created_by, revoked_at, created_at, updated_at`

func scanManualBlock(row pgx.Row) (*entity.ManualBlock, error) {
	var b entity.ManualBlock
	err := row.Scan(
		&b.ID,
		&b.ParentID,
		&b.ResourceID,
		&b.StartDate,
		&b.EndDate,
		&b.Type,
		&b.Reason,
		&b.IsActive,
		&b.CreatedBy,
		&b.RevokedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *manualBlockRepository) Create(ctx context.Context, block *entity.ManualBlock) error {
	query := `
		INSERT INTO manual_blocks (id, parent_id, resource_id, start_date, end_date, block_type, reason, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		block.ID,
		block.ParentID,
		block.ResourceID,
		block.StartDate,
		block.EndDate,
		block.Type,
		block.Reason,
		block.IsActive,
		block.CreatedBy,
		block.CreatedAt,
		block.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create manual block",
			zap.Error(err),
			zap.Stringer("parent_id", block.ParentID),
		)
		return fmt.Errorf("create manual block for %s: %w", block.ParentID, err)
	}

	return nil
}

func (r *manualBlockRepository) FindByID(ctx context.Context, id entity.ManualBlockID) (*entity.ManualBlock, error) {
	query := `SELECT ` + manualBlockColumns + ` FROM manual_blocks WHERE id = $1`

	block, err := scanManualBlock(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find manual block by ID",
			zap.Error(err),
			zap.Stringer("block_id", id),
		)
		return nil, fmt.Errorf("find manual block by ID %s: %w", id, err)
	}

	return block, nil
}

func (r *manualBlockRepository) Revoke(ctx context.Context, id entity.ManualBlockID, at time.Time) (bool, error) {
	query := `
		UPDATE manual_blocks
		SET is_active = FALSE, revoked_at = $2, updated_at = $2
		WHERE id = $1 AND is_active
	`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		r.log.Error("Failed to revoke manual block",
			zap.Error(err),
			zap.Stringer("block_id", id),
		)
		return false, fmt.Errorf("revoke manual block %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *manualBlockRepository) ListByParent(ctx context.Context, filter BlockFilter, limit, offset int) ([]*entity.ManualBlock, error) {
	query := `SELECT ` + manualBlockColumns + ` FROM manual_blocks` + blockFilterClause + `
		ORDER BY start_date, created_at
		LIMIT $5 OFFSET $6`

	rows, err := r.db.Query(ctx, query, append(filter.args(), limit, offset)...)
	if err != nil {
		r.log.Error("Failed to list manual blocks",
			zap.Error(err),
			zap.Stringer("parent_id", filter.ParentID),
		)
		return nil, fmt.Errorf("list manual blocks for %s: %w", filter.ParentID, err)
	}
	defer rows.Close()

	blocks, err := collectManualBlocks(rows)
	if err != nil {
		return nil, err
	}

	r.log.Debug("Manual blocks found",
		zap.Int("count", len(blocks)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)
	return blocks, nil
}

func (r *manualBlockRepository) CountByParent(ctx context.Context, filter BlockFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM manual_blocks` + blockFilterClause

	var total int64
	if err := r.db.QueryRow(ctx, query, filter.args()...).Scan(&total); err != nil {
		r.log.Error("Failed to count manual blocks",
			zap.Error(err),
			zap.Stringer("parent_id", filter.ParentID),
		)
		return 0, fmt.Errorf("count manual blocks for %s: %w", filter.ParentID, err)
	}
	return total, nil
}

func (r *manualBlockRepository) FindActiveOverlapping(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]*entity.ManualBlock, error) {
	query := `
		SELECT ` + manualBlockColumns + `
		FROM manual_blocks
		WHERE is_active
		  AND (resource_id = $1 OR (resource_id IS NULL AND parent_id IN ($1, $2)))
		  AND start_date < $4 AND end_date > $3
		ORDER BY start_date
	`

	parentID := resource.ID
	if resource.ParentID != nil {
		parentID = *resource.ParentID
	}

	rows, err := r.db.Query(ctx, query, resource.ID, parentID, window.Start, window.End)
	if err != nil {
		r.log.Error("Failed to find overlapping manual blocks",
			zap.Error(err),
			zap.Stringer("resource_id", resource.ID),
			zap.Stringer("window", window),
		)
		return nil, fmt.Errorf("find blocks for resource %s: %w", resource.ID, err)
	}
	defer rows.Close()

	return collectManualBlocks(rows)
}

func collectManualBlocks(rows pgx.Rows) ([]*entity.ManualBlock, error) {
	var blocks []*entity.ManualBlock
	for rows.Next() {
		block, err := scanManualBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manual block row: %w", err)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manual block rows: %w", err)
	}
	return blocks, nil
}
