package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memCache struct {
	values map[string]string
	sets   int
	err    error
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.sets++
	c.values[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func newSettingsFixture(t *testing.T) (*memStore, *memCache, SettingsProvider) {
	t.Helper()
	store := newMemStore()
	c := &memCache{values: map[string]string{}}
	p := NewSettingsProvider(memSettings{s: store}, c, time.Minute,
		utils.PaymentConfig{AutoConfirm: true, DefaultCurrency: "idr"}, zap.NewNop())
	return store, c, p
}

func TestSettings_FallsBackToConfig(t *testing.T) {
	_, _, p := newSettingsFixture(t)

	assert.True(t, p.AutoConfirmOnFullPayment(context.Background()))
	assert.Equal(t, "IDR", p.DefaultCurrency(context.Background()))
}

func TestSettings_TableOverridesConfigAndIsCached(t *testing.T) {
	store, c, p := newSettingsFixture(t)
	store.settings[entity.SettingAutoConfirmOnFullPayment] = entity.Setting{Key: entity.SettingAutoConfirmOnFullPayment, Value: "false"}
	store.settings[entity.SettingDefaultCurrency] = entity.Setting{Key: entity.SettingDefaultCurrency, Value: "thb"}

	ctx := context.Background()
	assert.False(t, p.AutoConfirmOnFullPayment(ctx))
	assert.Equal(t, "THB", p.DefaultCurrency(ctx))
	assert.Equal(t, 2, c.sets)

	// served from cache even after the row changes
	store.settings[entity.SettingAutoConfirmOnFullPayment] = entity.Setting{Key: entity.SettingAutoConfirmOnFullPayment, Value: "true"}
	assert.False(t, p.AutoConfirmOnFullPayment(ctx))
	assert.Equal(t, 2, c.sets)
}

func TestSettings_MalformedValuesUseFallback(t *testing.T) {
	_, c, p := newSettingsFixture(t)
	c.values[entity.SettingAutoConfirmOnFullPayment] = "sometimes"
	c.values[entity.SettingDefaultCurrency] = "RUPIAH"

	assert.True(t, p.AutoConfirmOnFullPayment(context.Background()))
	assert.Equal(t, "IDR", p.DefaultCurrency(context.Background()))
}

func TestSettings_CacheErrorReadsTable(t *testing.T) {
	store, c, p := newSettingsFixture(t)
	c.err = errors.New("connection refused")
	store.settings[entity.SettingAutoConfirmOnFullPayment] = entity.Setting{Key: entity.SettingAutoConfirmOnFullPayment, Value: "false"}

	assert.False(t, p.AutoConfirmOnFullPayment(context.Background()))
}

type brokenSettings struct{ err error }

func (r brokenSettings) Get(context.Context, string) (*entity.Setting, error) { return nil, r.err }

func TestSettings_TableErrorIsLoggedAndFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := NewSettingsProvider(brokenSettings{err: errors.New("too many connections")}, &memCache{values: map[string]string{}},
		time.Minute, utils.PaymentConfig{AutoConfirm: true, DefaultCurrency: "IDR"}, zap.New(core))

	assert.True(t, p.AutoConfirmOnFullPayment(context.Background()))

	entries := logs.FilterMessage("Settings table read failed, using config").All()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SettingAutoConfirmOnFullPayment, entries[0].ContextMap()["key"])
	assert.Equal(t, "too many connections", entries[0].ContextMap()["error"])
}
