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

type SettingRepository interface {
	Get(ctx context.Context, key string) (*entity.Setting, error)
}

type settingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSettingRepository(db database.Querier, log *zap.Logger) SettingRepository {
	return &settingRepository{
		db:  db,
		log: log.With(zap.String("repository", "setting")),
	}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*entity.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = $1`

	var s entity.Setting
	err := r.db.QueryRow(ctx, query, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to read setting",
			zap.Error(err),
			zap.String("key", key),
		)
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return &s, nil
}
