package usecase

import (
	"context"
	"fmt"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"
	"resort-booking/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*entity.Availability, error)
	Occupancy(ctx context.Context, req *request.OccupancyRequest) (*response.OccupancyResponse, error)
}

type availabilityService struct {
	resources repository.ResourceRepository
	readers   []ConflictReader
	now       func() time.Time
	log       *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return newAvailabilityService(repo.Resource, []ConflictReader{
		NewBlockReader(repo.ManualBlock),
		NewInternalReader(repo.ReservationItem),
		NewExternalReader(repo.ExternalBooking),
	}, time.Now, log)
}

func newAvailabilityService(resources repository.ResourceRepository, readers []ConflictReader, now func() time.Time, log *zap.Logger) *availabilityService {
	return &availabilityService{
		resources: resources,
		readers:   readers,
		now:       now,
		log:       log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (result *entity.Availability, err error) {
	ctx, span := tracer.Start(ctx, "availability.check")
	defer func() { endSpan(span, err) }()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Availability validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	resourceID, err := entity.ParseID[entity.Resource](req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid resource id %s", ErrValidation, req.ResourceID)
	}
	window, err := entity.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	span.SetAttributes(
		attribute.String("resource.id", req.ResourceID),
		attribute.String("window", window.String()),
		attribute.Int("units.requested", req.Units),
	)

	resource, err := s.findResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.collectConflicts(ctx, resource, window)
	if err != nil {
		return nil, err
	}

	result = resolveAvailability(resource, window, req.Units, conflicts, s.now())
	span.SetAttributes(
		attribute.Bool("available", result.IsAvailable),
		attribute.Int("units.available", result.AvailableUnits),
	)

	if result.InPast {
		s.log.Info("Availability requested for a past window",
			zap.Stringer("resource_id", resourceID),
			zap.Stringer("window", window),
		)
	}

	return result, nil
}

func (s *availabilityService) Occupancy(ctx context.Context, req *request.OccupancyRequest) (resp *response.OccupancyResponse, err error) {
	ctx, span := tracer.Start(ctx, "availability.occupancy")
	defer func() { endSpan(span, err) }()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	resourceID, err := entity.ParseID[entity.Resource](req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid resource id %s", ErrValidation, req.ResourceID)
	}
	day, err := time.Parse(entity.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %s", ErrValidation, req.Date)
	}
	window, _ := entity.NewDateRange(day, day.AddDate(0, 0, 1))

	resource, err := s.findResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.collectConflicts(ctx, resource, window)
	if err != nil {
		return nil, err
	}

	t := tallyOccupancy(conflicts)
	resp = &response.OccupancyResponse{
		ResourceID:    resource.ID.String(),
		Date:          window.Start.Format(entity.DateLayout),
		TotalUnits:    resource.Capacity,
		InternalUnits: t.internal,
		ExternalUnits: t.externalOnly,
		OccupiedUnits: t.occupied,
		Blocked:       t.blocked,
	}
	if resource.Capacity > 0 {
		resp.Rate = min(float64(t.occupied)/float64(resource.Capacity), 1)
	}
	return resp, nil
}

func (s *availabilityService) findResource(ctx context.Context, id entity.ResourceID) (*entity.Resource, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find resource %s: %w", id, err)
	}
	if resource == nil {
		return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
	}
	return resource, nil
}

// collectConflicts queries every reader concurrently and concatenates their
// answers in reader order.
func (s *availabilityService) collectConflicts(ctx context.Context, resource *entity.Resource, window entity.DateRange) ([]entity.Conflict, error) {
	perReader := make([][]entity.Conflict, len(s.readers))

	g, gctx := errgroup.WithContext(ctx)
	for i, reader := range s.readers {
		g.Go(func() error {
			found, err := reader.FindConflicts(gctx, resource, window)
			if err != nil {
				s.log.Error("Conflict source failed",
					zap.Error(err),
					zap.String("source", string(reader.Source())),
					zap.Stringer("resource_id", resource.ID),
				)
				return err
			}
			perReader[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect conflicts for resource %s: %w", resource.ID, err)
	}

	var conflicts []entity.Conflict
	for _, found := range perReader {
		conflicts = append(conflicts, found...)
	}
	return conflicts, nil
}

type occupancyTally struct {
	occupied     int
	internal     int
	externalOnly int
	blocked      bool
}

// tallyOccupancy sums occupied units over distinct stays. A stay reported by
// both the internal and the external source counts once, at the larger of the
// two unit counts. Manual blocks only set blocked.
func tallyOccupancy(conflicts []entity.Conflict) occupancyTally {
	type stay struct{ internal, external int }
	stays := make(map[string]*stay)

	var t occupancyTally
	for _, c := range conflicts {
		if c.SourceType == entity.ConflictSourceBlock {
			t.blocked = true
			continue
		}
		st, ok := stays[c.StayKey]
		if !ok {
			st = &stay{}
			stays[c.StayKey] = st
		}
		switch c.SourceType {
		case entity.ConflictSourceInternal:
			st.internal += c.Units
		case entity.ConflictSourceExternal:
			st.external += c.Units
		}
	}

	for _, st := range stays {
		t.occupied += max(st.internal, st.external)
		t.internal += st.internal
		if st.internal == 0 {
			t.externalOnly += st.external
		}
	}
	return t
}

func resolveAvailability(resource *entity.Resource, window entity.DateRange, requested int, conflicts []entity.Conflict, now time.Time) *entity.Availability {
	capacity := resource.Capacity
	if !resource.IsActive || capacity < 0 {
		capacity = 0
	}

	t := tallyOccupancy(conflicts)
	available := max(0, capacity-t.occupied)

	if conflicts == nil {
		conflicts = []entity.Conflict{}
	}

	return &entity.Availability{
		ResourceID:     resource.ID,
		Window:         window,
		RequestedUnits: requested,
		IsAvailable:    capacity > 0 && available >= requested && !t.blocked,
		AvailableUnits: available,
		TotalUnits:     capacity,
		OccupiedUnits:  t.occupied,
		Blocked:        t.blocked,
		InPast:         window.EndsBefore(now),
		Conflicts:      conflicts,
	}
}
