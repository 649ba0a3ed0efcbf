package types

// ArmUID carries the immutable StudyArm_N identifier, unique within a study.
// N is the smallest positive integer not already taken.
type Arm struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID        uint    `gorm:"column:soa_id;not null;index" json:"soa_id"`
	Name           string  `gorm:"column:name;not null" json:"name"`
	Label          *string `gorm:"column:label" json:"label,omitempty"`
	Description    *string `gorm:"column:description" json:"description,omitempty"`
	Type           *string `gorm:"column:type" json:"type,omitempty"`
	DataOriginType *string `gorm:"column:data_origin_type" json:"data_origin_type,omitempty"`
	OrderIndex     int     `gorm:"column:order_index;not null" json:"order_index"`
	ArmUID         string  `gorm:"column:arm_uid" json:"arm_uid"`
}

func (Arm) TableName() string { return "arm" }
