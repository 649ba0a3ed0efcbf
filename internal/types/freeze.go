package types

import (
	"time"

	"gorm.io/datatypes"
)

// Freeze is an immutable point-in-time snapshot of a study's versionable
// collections. Rows are write-once: no update or delete path exists.
type Freeze struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID      uint           `gorm:"column:soa_id;not null;uniqueIndex:idx_soafreeze_unique" json:"soa_id"`
	VersionLabel string         `gorm:"column:version_label;not null;uniqueIndex:idx_soafreeze_unique" json:"version_label"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	Snapshot     datatypes.JSON `gorm:"column:snapshot_json" json:"-"`
}

func (Freeze) TableName() string { return "soa_freeze" }
