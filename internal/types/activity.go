package types

type Activity struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID     uint   `gorm:"column:soa_id;not null;index" json:"soa_id"`
	Study       *Study `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudyID;references:ID" json:"-"`
	Name        string `gorm:"column:name;not null" json:"name"`
	OrderIndex  int    `gorm:"column:order_index;not null" json:"order_index"`
	ActivityUID string `gorm:"column:activity_uid" json:"activity_uid"`
}

func (Activity) TableName() string { return "activity" }
