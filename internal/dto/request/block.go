package request

type CreateBlockRequest struct {
	ParentID   string  `json:"parent_id" validate:"required,uuid"`
	ResourceID *string `json:"resource_id,omitempty" validate:"omitempty,uuid"`
	StartDate  string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Type       string  `json:"block_type" validate:"required,oneof=maintenance owner_use event other"`
	Reason     string  `json:"reason" validate:"max=500"`
	CreatedBy  string  `json:"created_by" validate:"required,max=100"`
}

// ListBlocksRequest filters blocks of one parent. The window is optional but
// both bounds must be given together.
type ListBlocksRequest struct {
	ParentID   string `json:"parent_id" validate:"required,uuid"`
	StartDate  string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ActiveOnly bool   `json:"active_only"`
	PaginatedRequest
}
