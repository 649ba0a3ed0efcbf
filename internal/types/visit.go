package types

type Visit struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID    uint   `gorm:"column:soa_id;not null;index" json:"soa_id"`
	Study      *Study `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudyID;references:ID" json:"-"`
	Name       string `gorm:"column:name;not null" json:"name"`
	RawHeader  string `gorm:"column:raw_header" json:"raw_header"`
	OrderIndex int    `gorm:"column:order_index;not null" json:"order_index"`
	EpochID    *uint  `gorm:"column:epoch_id;index" json:"epoch_id,omitempty"`
}

func (Visit) TableName() string { return "visit" }
