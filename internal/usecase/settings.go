package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/pkg/cache"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

type settingsProvider struct {
	repo     repository.SettingRepository
	cache    cache.Store
	ttl      time.Duration
	fallback utils.PaymentConfig
	log      *zap.Logger
}

// NewSettingsProvider reads settings through cache, then the settings table,
// then falls back to static config.
func NewSettingsProvider(repo repository.SettingRepository, store cache.Store, ttl time.Duration, fallback utils.PaymentConfig, log *zap.Logger) SettingsProvider {
	if store == nil {
		store = cache.Noop{}
	}
	return &settingsProvider{
		repo:     repo,
		cache:    store,
		ttl:      ttl,
		fallback: fallback,
		log:      log.With(zap.String("service", "settings")),
	}
}

func (p *settingsProvider) AutoConfirmOnFullPayment(ctx context.Context) bool {
	v, ok := p.lookup(ctx, entity.SettingAutoConfirmOnFullPayment)
	if !ok {
		return p.fallback.AutoConfirm
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.log.Warn("Malformed boolean setting", zap.String("value", v))
		return p.fallback.AutoConfirm
	}
	return b
}

func (p *settingsProvider) DefaultCurrency(ctx context.Context) string {
	v, ok := p.lookup(ctx, entity.SettingDefaultCurrency)
	if !ok || len(v) != 3 {
		return strings.ToUpper(p.fallback.DefaultCurrency)
	}
	return strings.ToUpper(v)
}

func (p *settingsProvider) lookup(ctx context.Context, key string) (string, bool) {
	if v, found, err := p.cache.Get(ctx, key); err != nil {
		p.log.Warn("Settings cache read failed", zap.Error(err), zap.String("key", key))
	} else if found {
		return v, true
	}

	setting, err := p.repo.Get(ctx, key)
	if err != nil {
		p.log.Warn("Settings table read failed, using config", zap.Error(err), zap.String("key", key))
		return "", false
	}
	if setting == nil {
		return "", false
	}

	if err := p.cache.Set(ctx, key, setting.Value, p.ttl); err != nil {
		p.log.Warn("Settings cache write failed", zap.Error(err), zap.String("key", key))
	}
	return setting.Value, true
}
