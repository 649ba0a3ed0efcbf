package types

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionDelete  = "delete"
	AuditActionReorder = "reorder"
)

const (
	EntityKindVisit    = "visit"
	EntityKindActivity = "activity"
	EntityKindEpoch    = "epoch"
	EntityKindArm      = "arm"
	EntityKindElement  = "element"
)

// EntityAudit is the append-only ledger for ordinary CRUD mutations, tagged
// by entity kind. Rows are never mutated or deleted.
type EntityAudit struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID     uint           `gorm:"column:soa_id;not null;index" json:"soa_id"`
	EntityKind  string         `gorm:"column:entity_kind;not null" json:"entity_kind"`
	EntityID    *uint          `gorm:"column:entity_id" json:"entity_id,omitempty"`
	Action      string         `gorm:"column:action;not null" json:"action"`
	Before      datatypes.JSON `gorm:"column:before_json" json:"before,omitempty"`
	After       datatypes.JSON `gorm:"column:after_json" json:"after,omitempty"`
	PerformedAt time.Time      `gorm:"column:performed_at;not null" json:"performed_at"`
}

func (EntityAudit) TableName() string { return "entity_audit" }

type RollbackAudit struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID            uint      `gorm:"column:soa_id;not null;index" json:"soa_id"`
	FreezeID           uint      `gorm:"column:freeze_id;not null" json:"freeze_id"`
	PerformedAt        time.Time `gorm:"column:performed_at;not null" json:"performed_at"`
	VisitsRestored     int       `gorm:"column:visits_restored" json:"visits_restored"`
	ActivitiesRestored int       `gorm:"column:activities_restored" json:"activities_restored"`
	CellsRestored      int       `gorm:"column:cells_restored" json:"cells_restored"`
	ConceptsRestored   int       `gorm:"column:concepts_restored" json:"concepts_restored"`
	ElementsRestored   int       `gorm:"column:elements_restored" json:"elements_restored"`
}

func (RollbackAudit) TableName() string { return "rollback_audit" }

type ReorderAudit struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID     uint           `gorm:"column:soa_id;not null;index" json:"soa_id"`
	EntityKind  string         `gorm:"column:entity_type;not null" json:"entity_type"`
	OldOrder    datatypes.JSON `gorm:"column:old_order_json;not null" json:"old_order"`
	NewOrder    datatypes.JSON `gorm:"column:new_order_json;not null" json:"new_order"`
	PerformedAt time.Time      `gorm:"column:performed_at;not null" json:"performed_at"`
}

func (ReorderAudit) TableName() string { return "reorder_audit" }
