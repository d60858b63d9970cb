package entity

type ResourceKind string

const (
	ResourceKindRoomType ResourceKind = "room_type"
	ResourceKindShuttle  ResourceKind = "shuttle"
	ResourceKindActivity ResourceKind = "activity"
	ResourceKindPackage  ResourceKind = "package"
	// ResourceKindProperty is a parent (hotel or operator) with no own capacity.
	ResourceKindProperty ResourceKind = "property"
)

// Resource is an inventory-bearing entity. ParentID points to the owning hotel
// (or operator) and is the scope of hotel-wide manual blocks.
type Resource struct {
	ID       ResourceID    `db:"id"`
	ParentID *ID[Resource] `db:"parent_id"`
	Kind     ResourceKind  `db:"kind"`
	Name     string        `db:"name"`
	Capacity int           `db:"capacity"`
	IsActive bool          `db:"is_active"`
	Timestamps
}

// ChannelMapping links an external platform's property/room codes to a local resource.
type ChannelMapping struct {
	Platform     string     `db:"platform"`
	PropertyCode string     `db:"external_property_code"`
	RoomCode     string     `db:"external_room_code"`
	ResourceID   ResourceID `db:"resource_id"`
}
