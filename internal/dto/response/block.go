package response

import (
	"time"

	"resort-booking/internal/data/entity"
)

type BlockResponse struct {
	ID         string           `json:"id"`
	ParentID   string           `json:"parent_id"`
	ResourceID *string          `json:"resource_id"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	Type       entity.BlockType `json:"block_type"`
	Reason     string           `json:"reason"`
	IsActive   bool             `json:"is_active"`
	CreatedBy  string           `json:"created_by"`
	RevokedAt  *time.Time       `json:"revoked_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func BlockToResponse(b *entity.ManualBlock) BlockResponse {
	resp := BlockResponse{
		ID:        b.ID.String(),
		ParentID:  b.ParentID.String(),
		StartDate: b.StartDate.Format(entity.DateLayout),
		EndDate:   b.EndDate.Format(entity.DateLayout),
		Type:      b.Type,
		Reason:    b.Reason,
		IsActive:  b.IsActive,
		CreatedBy: b.CreatedBy,
		RevokedAt: b.RevokedAt,
		CreatedAt: b.CreatedAt,
	}
	if b.ResourceID != nil {
		id := b.ResourceID.String()
		resp.ResourceID = &id
	}
	return resp
}
