package entity

import "time"

type BlockType string

const (
	BlockTypeMaintenance BlockType = "maintenance"
	BlockTypeOwnerUse    BlockType = "owner_use"
	BlockTypeEvent       BlockType = "event"
	BlockTypeOther       BlockType = "other"
)

// ManualBlock is an administrator-declared unavailability window. A nil
// ResourceID makes the block apply to every resource under ParentID.
type ManualBlock struct {
	ID         ManualBlockID `db:"id"`
	ParentID   ResourceID    `db:"parent_id"`
	ResourceID *ResourceID   `db:"resource_id"`
	StartDate  time.Time     `db:"start_date"`
	EndDate    time.Time     `db:"end_date"`
	Type       BlockType     `db:"block_type"`
	Reason     string        `db:"reason"`
	IsActive   bool          `db:"is_active"`
	CreatedBy  string        `db:"created_by"`
	RevokedAt  *time.Time    `db:"revoked_at"`
	Timestamps
}

func (b *ManualBlock) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// HotelWide reports whether the block covers every resource of its parent.
func (b *ManualBlock) HotelWide() bool {
	return b.ResourceID == nil
}
