package request

type AvailabilityRequest struct {
	ResourceID string `json:"resource_id" validate:"required,uuid"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Units      int    `json:"units" validate:"min=1"`
}

type OccupancyRequest struct {
	ResourceID string `json:"resource_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
}
