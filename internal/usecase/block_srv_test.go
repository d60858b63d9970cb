package usecase

import (
	"context"
	"errors"
	"testing"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockRequest(parent entity.ResourceID, resource *entity.ResourceID, start, end string) *request.CreateBlockRequest {
	req := &request.CreateBlockRequest{
		ParentID:  parent.String(),
		StartDate: start,
		EndDate:   end,
		Type:      string(entity.BlockTypeMaintenance),
		Reason:    "pool resurfacing",
		CreatedBy: "ops@resort.test",
	}
	if resource != nil {
		id := resource.String()
		req.ResourceID = &id
	}
	return req
}

func TestCreateBlock(t *testing.T) {
	env := newTestEnv(t)
	room := env.store.addResource(3)
	parent := *room.ParentID

	block, err := env.blocks.CreateBlock(context.Background(), blockRequest(parent, &room.ID, "2025-05-01", "2025-05-03"))
	require.NoError(t, err)
	assert.True(t, block.IsActive)
	require.NotNil(t, block.ResourceID)
	assert.Equal(t, room.ID.String(), *block.ResourceID)
	assert.Equal(t, "2025-05-01", block.StartDate)

	hotelWide, err := env.blocks.CreateBlock(context.Background(), blockRequest(parent, nil, "2025-06-01", "2025-06-02"))
	require.NoError(t, err)
	assert.Nil(t, hotelWide.ResourceID)
}

func TestCreateBlock_Rejects(t *testing.T) {
	env := newTestEnv(t)
	room := env.store.addResource(3)
	other := env.store.addResource(3)
	parent := *room.ParentID
	missing := entity.NewID[entity.Resource]()

	tests := []struct {
		name    string
		req     *request.CreateBlockRequest
		wantErr error
	}{
		{"empty window", blockRequest(parent, nil, "2025-05-03", "2025-05-03"), ErrValidation},
		{"reversed window", blockRequest(parent, nil, "2025-05-03", "2025-05-01"), ErrValidation},
		{"resource under another parent", blockRequest(parent, &other.ID, "2025-05-01", "2025-05-03"), ErrValidation},
		{"unknown resource", blockRequest(parent, &missing, "2025-05-01", "2025-05-03"), ErrNotFound},
		{"bad type", func() *request.CreateBlockRequest {
			r := blockRequest(parent, nil, "2025-05-01", "2025-05-03")
			r.Type = "holiday"
			return r
		}(), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.blocks.CreateBlock(context.Background(), tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRevokeBlock_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	room := env.store.addResource(3)
	ctx := context.Background()

	block, err := env.blocks.CreateBlock(ctx, blockRequest(*room.ParentID, &room.ID, "2025-05-01", "2025-05-03"))
	require.NoError(t, err)
	assert.True(t, env.check(t, room, "2025-05-02", "2025-05-04", 1).Blocked)

	first, err := env.blocks.RevokeBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.False(t, first.IsActive)
	require.NotNil(t, first.RevokedAt)

	second, err := env.blocks.RevokeBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.False(t, second.IsActive)
	assert.Equal(t, first.RevokedAt, second.RevokedAt)

	a := env.check(t, room, "2025-05-02", "2025-05-04", 1)
	assert.False(t, a.Blocked)
	assert.True(t, a.IsAvailable)

	_, err = env.blocks.RevokeBlock(ctx, entity.NewID[entity.ManualBlock]().String())
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = env.blocks.RevokeBlock(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestListBlocks(t *testing.T) {
	env := newTestEnv(t)
	room := env.store.addResource(3)
	parent := *room.ParentID
	ctx := context.Background()

	may, err := env.blocks.CreateBlock(ctx, blockRequest(parent, &room.ID, "2025-05-01", "2025-05-03"))
	require.NoError(t, err)
	_, err = env.blocks.CreateBlock(ctx, blockRequest(parent, nil, "2025-07-01", "2025-07-05"))
	require.NoError(t, err)
	_, err = env.blocks.RevokeBlock(ctx, may.ID)
	require.NoError(t, err)

	all, err := env.blocks.ListBlocks(ctx, &request.ListBlocksRequest{ParentID: parent.String()})
	require.NoError(t, err)
	require.Len(t, all.Data, 2)
	assert.Equal(t, "2025-05-01", all.Data[0].StartDate)
	assert.Equal(t, int64(2), all.Pagination.Total)
	assert.Equal(t, 1, all.Pagination.Page)

	active, err := env.blocks.ListBlocks(ctx, &request.ListBlocksRequest{ParentID: parent.String(), ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active.Data, 1)
	assert.Equal(t, "2025-07-01", active.Data[0].StartDate)

	windowed, err := env.blocks.ListBlocks(ctx, &request.ListBlocksRequest{
		ParentID: parent.String(), StartDate: "2025-05-02", EndDate: "2025-05-10",
	})
	require.NoError(t, err)
	require.Len(t, windowed.Data, 1)
	assert.Equal(t, may.ID, windowed.Data[0].ID)

	second, err := env.blocks.ListBlocks(ctx, &request.ListBlocksRequest{
		ParentID:         parent.String(),
		PaginatedRequest: request.PaginatedRequest{Page: 2, PerPage: 1},
	})
	require.NoError(t, err)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "2025-07-01", second.Data[0].StartDate)
	assert.Equal(t, 2, second.Pagination.TotalPages)

	_, err = env.blocks.ListBlocks(ctx, &request.ListBlocksRequest{ParentID: parent.String(), StartDate: "2025-05-02"})
	assert.True(t, errors.Is(err, ErrValidation))
}
