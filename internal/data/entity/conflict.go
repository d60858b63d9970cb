package entity

type ConflictSource string

const (
	ConflictSourceBlock    ConflictSource = "block"
	ConflictSourceInternal ConflictSource = "internal"
	ConflictSourceExternal ConflictSource = "external"
)

// Conflict is one source's claim that a resource is occupied in a window.
// StayKey identifies the underlying stay so the same stay held by two sources
// is counted once.
type Conflict struct {
	SourceType ConflictSource `json:"source_type"`
	SourceID   string         `json:"source_id"`
	Range      DateRange      `json:"-"`
	Label      string         `json:"label"`
	Units      int            `json:"units"`
	StayKey    string         `json:"-"`
	// Tentative marks a hold that is not yet confirmed (a pending reservation).
	Tentative bool `json:"tentative,omitempty"`
}

// Availability is the merged verdict for one resource over one window.
type Availability struct {
	ResourceID     ResourceID
	Window         DateRange
	RequestedUnits int
	IsAvailable    bool
	AvailableUnits int
	TotalUnits     int
	OccupiedUnits  int
	Blocked        bool
	InPast         bool
	Conflicts      []Conflict
}
