package usecase

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/pkg/gateway"

	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory stand-in for Postgres. Rows are stored by value
// and copied on read, and WithinTx restores a snapshot when fn fails.
type memStore struct {
	mu           sync.Mutex
	resources    map[entity.ResourceID]entity.Resource
	mappings     map[string]entity.ResourceID
	blocks       map[entity.ManualBlockID]entity.ManualBlock
	guests       map[string]entity.Guest
	reservations map[entity.ReservationID]entity.Reservation
	items        map[entity.ReservationItemID]entity.ReservationItem
	external     map[string]entity.ExternalBooking
	tombstones   map[string]time.Time
	payments     map[string]entity.Payment
	settings     map[string]entity.Setting

	// failItems makes CreateBatch fail, to exercise rollback
	failItems error
	// takenConfirmations are numbers Reservation.Create reports as collisions
	takenConfirmations map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		resources:          map[entity.ResourceID]entity.Resource{},
		mappings:           map[string]entity.ResourceID{},
		blocks:             map[entity.ManualBlockID]entity.ManualBlock{},
		guests:             map[string]entity.Guest{},
		reservations:       map[entity.ReservationID]entity.Reservation{},
		items:              map[entity.ReservationItemID]entity.ReservationItem{},
		external:           map[string]entity.ExternalBooking{},
		tombstones:         map[string]time.Time{},
		payments:           map[string]entity.Payment{},
		settings:           map[string]entity.Setting{},
		takenConfirmations: map[string]bool{},
	}
}

type memSnapshot struct {
	resources    map[entity.ResourceID]entity.Resource
	blocks       map[entity.ManualBlockID]entity.ManualBlock
	guests       map[string]entity.Guest
	reservations map[entity.ReservationID]entity.Reservation
	items        map[entity.ReservationItemID]entity.ReservationItem
	external     map[string]entity.ExternalBooking
	tombstones   map[string]time.Time
	payments     map[string]entity.Payment
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		resources:    maps.Clone(s.resources),
		blocks:       maps.Clone(s.blocks),
		guests:       maps.Clone(s.guests),
		reservations: maps.Clone(s.reservations),
		items:        maps.Clone(s.items),
		external:     maps.Clone(s.external),
		tombstones:   maps.Clone(s.tombstones),
		payments:     maps.Clone(s.payments),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = snap.resources
	s.blocks = snap.blocks
	s.guests = snap.guests
	s.reservations = snap.reservations
	s.items = snap.items
	s.external = snap.external
	s.tombstones = snap.tombstones
	s.payments = snap.payments
}

func (s *memStore) addResource(capacity int) *entity.Resource {
	parent := entity.NewID[entity.Resource]()
	return s.addChildResource(parent, capacity)
}

func (s *memStore) addChildResource(parent entity.ResourceID, capacity int) *entity.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := entity.Resource{
		ID:       entity.NewID[entity.Resource](),
		ParentID: &parent,
		Kind:     entity.ResourceKindRoomType,
		Name:     "Deluxe",
		Capacity: capacity,
		IsActive: true,
	}
	s.resources[r.ID] = r
	return &r
}

func (s *memStore) mapChannel(platform, property, room string, id entity.ResourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[platform+"|"+property+"|"+room] = id
}

func (s *memStore) countExternal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.external)
}

func (s *memStore) countReservations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *memStore) reservation(id entity.ReservationID) entity.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id]
}

func (s *memStore) sumPaid(id entity.ReservationID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, p := range s.payments {
		if p.ReservationID == id && p.Status == entity.PaymentStatusPaid {
			total += p.Amount
		}
	}
	return total
}

func newMemRepository(s *memStore) *repository.Repository {
	repo := &repository.Repository{
		Resource:        memResources{s},
		ManualBlock:     memBlocks{s},
		Guest:           memGuests{s},
		Reservation:     memReservations{s},
		ReservationItem: memItems{s},
		ExternalBooking: memExternal{s},
		Payment:         memPayments{s},
		Setting:         memSettings{s},
	}
	repo.Tx = memTx{store: s, repo: repo}
	return repo
}

type memTx struct {
	store *memStore
	repo  *repository.Repository
}

func (t memTx) WithinTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	snap := t.store.snapshot()
	if err := fn(t.repo); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memResources struct{ s *memStore }

func (r memResources) FindByID(_ context.Context, id entity.ResourceID) (*entity.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r memResources) FindByIDForUpdate(ctx context.Context, id entity.ResourceID) (*entity.Resource, error) {
	return r.FindByID(ctx, id)
}

func (r memResources) FindByChannelMapping(_ context.Context, platform, property, room string) (*entity.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.mappings[platform+"|"+property+"|"+room]
	if !ok {
		return nil, nil
	}
	res := r.s.resources[id]
	return &res, nil
}

type memBlocks struct{ s *memStore }

func (r memBlocks) Create(_ context.Context, b *entity.ManualBlock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.blocks[b.ID] = *b
	return nil
}

func (r memBlocks) FindByID(_ context.Context, id entity.ManualBlockID) (*entity.ManualBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blocks[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r memBlocks) Revoke(_ context.Context, id entity.ManualBlockID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blocks[id]
	if !ok || !b.IsActive {
		return false, nil
	}
	b.IsActive = false
	b.RevokedAt = &at
	r.s.blocks[id] = b
	return true, nil
}

func (r memBlocks) filter(f repository.BlockFilter) []*entity.ManualBlock {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ManualBlock
	for _, b := range r.s.blocks {
		if b.ParentID != f.ParentID || (f.ActiveOnly && !b.IsActive) {
			continue
		}
		if f.Window != nil && !b.Range().Overlaps(*f.Window) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r memBlocks) ListByParent(_ context.Context, f repository.BlockFilter, limit, offset int) ([]*entity.ManualBlock, error) {
	out := r.filter(f)
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (r memBlocks) CountByParent(_ context.Context, f repository.BlockFilter) (int64, error) {
	return int64(len(r.filter(f))), nil
}

func (r memBlocks) FindActiveOverlapping(_ context.Context, resource *entity.Resource, window entity.DateRange) ([]*entity.ManualBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ManualBlock
	for _, b := range r.s.blocks {
		if !b.IsActive || !b.Range().Overlaps(window) {
			continue
		}
		own := b.ResourceID != nil && *b.ResourceID == resource.ID
		wide := b.ResourceID == nil && (b.ParentID == resource.ID || (resource.ParentID != nil && b.ParentID == *resource.ParentID))
		if own || wide {
			out = append(out, &b)
		}
	}
	return out, nil
}

type memGuests struct{ s *memStore }

func (r memGuests) Upsert(_ context.Context, g *entity.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.guests[g.Email]; ok {
		g.ID = existing.ID
		g.CreatedAt = existing.CreatedAt
	}
	r.s.guests[g.Email] = *g
	return nil
}

func (r memGuests) FindByID(_ context.Context, id entity.GuestID) (*entity.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.guests {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, nil
}

type memReservations struct{ s *memStore }

func (r memReservations) Create(_ context.Context, res *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.takenConfirmations[res.ConfirmationNumber] {
		return repository.ErrDuplicateConfirmation
	}
	for _, existing := range r.s.reservations {
		if existing.ConfirmationNumber == res.ConfirmationNumber {
			return repository.ErrDuplicateConfirmation
		}
	}
	row := *res
	row.Items = nil
	r.s.reservations[res.ID] = row
	return nil
}

func (r memReservations) FindByID(_ context.Context, id entity.ReservationID) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r memReservations) FindByIDForUpdate(ctx context.Context, id entity.ReservationID) (*entity.Reservation, error) {
	return r.FindByID(ctx, id)
}

func (r memReservations) FindByConfirmationNumber(_ context.Context, number string) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.ConfirmationNumber == number {
			return &res, nil
		}
	}
	return nil, nil
}

func (r memReservations) UpdateStatus(_ context.Context, res *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.reservations[res.ID]
	if !ok {
		return errors.New("reservation not found")
	}
	row.Status = res.Status
	row.PaymentStatus = res.PaymentStatus
	row.UpdatedAt = res.UpdatedAt
	r.s.reservations[res.ID] = row
	return nil
}

type memItems struct{ s *memStore }

func (r memItems) CreateBatch(_ context.Context, items []*entity.ReservationItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failItems != nil {
		return r.s.failItems
	}
	for _, it := range items {
		r.s.items[it.ID] = *it
	}
	return nil
}

func (r memItems) FindByReservationID(_ context.Context, id entity.ReservationID) ([]*entity.ReservationItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ReservationItem
	for _, it := range r.s.items {
		if it.ReservationID == id {
			out = append(out, &it)
		}
	}
	return out, nil
}

func (r memItems) FindOccupying(_ context.Context, resourceID entity.ResourceID, window entity.DateRange) ([]*repository.OccupyingItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.OccupyingItem
	for _, it := range r.s.items {
		res := r.s.reservations[it.ReservationID]
		rng, ok := it.Range()
		if it.ResourceID != resourceID || !ok || !rng.Overlaps(window) || !res.Status.HoldsInventory() {
			continue
		}
		out = append(out, &repository.OccupyingItem{Item: &it, ConfirmationNumber: res.ConfirmationNumber, Status: res.Status})
	}
	return out, nil
}

type memExternal struct{ s *memStore }

func externalKey(platform, id string) string { return platform + "/" + id }

func (r memExternal) Insert(_ context.Context, b *entity.ExternalBooking) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := externalKey(b.Platform, b.ExternalID)
	if _, ok := r.s.external[key]; ok {
		return false, nil
	}
	r.s.external[key] = *b
	return true, nil
}

func (r memExternal) FindByExternalIDForUpdate(_ context.Context, platform, externalID string) (*entity.ExternalBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.external[externalKey(platform, externalID)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r memExternal) Update(_ context.Context, b *entity.ExternalBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.external[externalKey(b.Platform, b.ExternalID)] = *b
	return nil
}

func (r memExternal) FindActiveOverlapping(_ context.Context, resourceID entity.ResourceID, window entity.DateRange) ([]*entity.ExternalBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ExternalBooking
	for _, b := range r.s.external {
		if b.ResourceID == resourceID && b.Status != entity.ExternalBookingCancelled && b.Range().Overlaps(window) {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r memExternal) LockExternalID(context.Context, string, string) error { return nil }

func (r memExternal) RecordTombstone(_ context.Context, platform, externalID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := externalKey(platform, externalID)
	if prev, ok := r.s.tombstones[key]; !ok || at.After(prev) {
		r.s.tombstones[key] = at
	}
	return nil
}

func (r memExternal) FindTombstone(_ context.Context, platform, externalID string) (*time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	at, ok := r.s.tombstones[externalKey(platform, externalID)]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

type memPayments struct{ s *memStore }

func (r memPayments) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[p.GatewayRef] = *p
	return nil
}

func (r memPayments) FindByGatewayRef(_ context.Context, ref string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[ref]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPayments) FindByGatewayRefForUpdate(ctx context.Context, ref string) (*entity.Payment, error) {
	return r.FindByGatewayRef(ctx, ref)
}

func (r memPayments) FindByReservationID(_ context.Context, id entity.ReservationID) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.ReservationID == id {
			out = append(out, &p)
		}
	}
	return out, nil
}

// Update rewrites the row by id, re-keying it when the gateway ref changed.
func (r memPayments) Update(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for ref, existing := range r.s.payments {
		if existing.ID == p.ID {
			delete(r.s.payments, ref)
		}
	}
	r.s.payments[p.GatewayRef] = *p
	return nil
}

func (r memPayments) SumPaid(_ context.Context, id entity.ReservationID) (float64, error) {
	return r.s.sumPaid(id), nil
}

type memSettings struct{ s *memStore }

func (r memSettings) Get(_ context.Context, key string) (*entity.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.settings[key]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

type staticSettings struct {
	autoConfirm bool
	currency    string
}

func (s staticSettings) AutoConfirmOnFullPayment(context.Context) bool { return s.autoConfirm }
func (s staticSettings) DefaultCurrency(context.Context) string        { return s.currency }

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockGateway is a mock implementation of PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockGateway) RetrieveCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}
