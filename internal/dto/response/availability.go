package response

import "resort-booking/internal/data/entity"

// AvailabilityResponse is the guest-facing view: a verdict and a count, no provenance.
type AvailabilityResponse struct {
	IsAvailable    bool `json:"is_available"`
	AvailableUnits int  `json:"available_units"`
}

type ConflictResponse struct {
	SourceType entity.ConflictSource `json:"source_type"`
	SourceID   string                `json:"source_id"`
	StartDate  string                `json:"start_date"`
	EndDate    string                `json:"end_date"`
	Label      string                `json:"label"`
	Units      int                   `json:"units"`
}

type AvailabilityDetailResponse struct {
	ResourceID     string             `json:"resource_id"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	RequestedUnits int                `json:"requested_units"`
	IsAvailable    bool               `json:"is_available"`
	AvailableUnits int                `json:"available_units"`
	TotalUnits     int                `json:"total_units"`
	OccupiedUnits  int                `json:"occupied_units"`
	Blocked        bool               `json:"blocked"`
	InPast         bool               `json:"in_past"`
	Conflicts      []ConflictResponse `json:"conflicts"`
}

type OccupancyResponse struct {
	ResourceID    string  `json:"resource_id"`
	Date          string  `json:"date"`
	TotalUnits    int     `json:"total_units"`
	InternalUnits int     `json:"internal_units"`
	ExternalUnits int     `json:"external_units"`
	OccupiedUnits int     `json:"occupied_units"`
	Blocked       bool    `json:"blocked"`
	Rate          float64 `json:"occupancy_rate"`
}

func AvailabilityToResponse(a *entity.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		IsAvailable:    a.IsAvailable,
		AvailableUnits: a.AvailableUnits,
	}
}

func AvailabilityToDetailResponse(a *entity.Availability) AvailabilityDetailResponse {
	conflicts := make([]ConflictResponse, 0, len(a.Conflicts))
	for _, c := range a.Conflicts {
		conflicts = append(conflicts, ConflictResponse{
			SourceType: c.SourceType,
			SourceID:   c.SourceID,
			StartDate:  c.Range.Start.Format(entity.DateLayout),
			EndDate:    c.Range.End.Format(entity.DateLayout),
			Label:      c.Label,
			Units:      c.Units,
		})
	}

	return AvailabilityDetailResponse{
		ResourceID:     a.ResourceID.String(),
		StartDate:      a.Window.Start.Format(entity.DateLayout),
		EndDate:        a.Window.End.Format(entity.DateLayout),
		RequestedUnits: a.RequestedUnits,
		IsAvailable:    a.IsAvailable,
		AvailableUnits: a.AvailableUnits,
		TotalUnits:     a.TotalUnits,
		OccupiedUnits:  a.OccupiedUnits,
		Blocked:        a.Blocked,
		InPast:         a.InPast,
		Conflicts:      conflicts,
	}
}
