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

	"go.uber.org/zap"
)

type BlockService interface {
	CreateBlock(ctx context.Context, req *request.CreateBlockRequest) (*response.BlockResponse, error)
	RevokeBlock(ctx context.Context, blockID string) (*response.BlockResponse, error)
	ListBlocks(ctx context.Context, req *request.ListBlocksRequest) (*response.PaginatedResponse[response.BlockResponse], error)
}

const defaultBlockPageSize = 20

type blockService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewBlockService(repo *repository.Repository, log *zap.Logger) BlockService {
	return &blockService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "block")),
	}
}

func (s *blockService) CreateBlock(ctx context.Context, req *request.CreateBlockRequest) (*response.BlockResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create block validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	parentID, err := entity.ParseID[entity.Resource](req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid parent id %s", ErrValidation, req.ParentID)
	}
	window, err := entity.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var resourceID *entity.ResourceID
	if req.ResourceID != nil && *req.ResourceID != "" {
		id, err := entity.ParseID[entity.Resource](*req.ResourceID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid resource id %s", ErrValidation, *req.ResourceID)
		}

		resource, err := s.repo.Resource.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find resource %s: %w", id, err)
		}
		if resource == nil {
			return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
		}
		if resource.ParentID == nil || *resource.ParentID != parentID {
			return nil, fmt.Errorf("%w: resource %s does not belong to %s", ErrValidation, id, parentID)
		}
		resourceID = &id
	}

	now := s.now()
	block := &entity.ManualBlock{
		ID:         entity.NewID[entity.ManualBlock](),
		ParentID:   parentID,
		ResourceID: resourceID,
		StartDate:  window.Start,
		EndDate:    window.End,
		Type:       entity.BlockType(req.Type),
		Reason:     req.Reason,
		IsActive:   true,
		CreatedBy:  req.CreatedBy,
		Timestamps: entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.repo.ManualBlock.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}

	s.log.Info("Manual block created",
		zap.Stringer("block_id", block.ID),
		zap.Stringer("parent_id", parentID),
		zap.Bool("hotel_wide", block.HotelWide()),
		zap.Stringer("window", window),
		zap.String("created_by", block.CreatedBy),
	)

	resp := response.BlockToResponse(block)
	return &resp, nil
}

// RevokeBlock deactivates a block. Revoking an already revoked block is a no-op.
func (s *blockService) RevokeBlock(ctx context.Context, blockID string) (*response.BlockResponse, error) {
	id, err := entity.ParseID[entity.ManualBlock](blockID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid block id %s", ErrValidation, blockID)
	}

	revoked, err := s.repo.ManualBlock.Revoke(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("revoke block %s: %w", id, err)
	}

	block, err := s.repo.ManualBlock.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find block %s: %w", id, err)
	}
	if block == nil {
		return nil, fmt.Errorf("block %s: %w", id, ErrNotFound)
	}

	if revoked {
		s.log.Info("Manual block revoked", zap.Stringer("block_id", id))
	}

	resp := response.BlockToResponse(block)
	return &resp, nil
}

func (s *blockService) ListBlocks(ctx context.Context, req *request.ListBlocksRequest) (*response.PaginatedResponse[response.BlockResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = defaultBlockPageSize
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	parentID, err := entity.ParseID[entity.Resource](req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid parent id %s", ErrValidation, req.ParentID)
	}

	var window *entity.DateRange
	switch {
	case req.StartDate != "" && req.EndDate != "":
		w, err := entity.ParseDateRange(req.StartDate, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		window = &w
	case req.StartDate != "" || req.EndDate != "":
		return nil, fmt.Errorf("%w: start_date and end_date must be given together", ErrValidation)
	}

	filter := repository.BlockFilter{ParentID: parentID, Window: window, ActiveOnly: req.ActiveOnly}

	blocks, err := s.repo.ManualBlock.ListByParent(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list blocks for %s: %w", parentID, err)
	}

	total, err := s.repo.ManualBlock.CountByParent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count blocks for %s: %w", parentID, err)
	}

	resp := make([]response.BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		resp = append(resp, response.BlockToResponse(b))
	}
	return response.NewPaginatedResponse(resp, req.Page, req.Limit(), total), nil
}
