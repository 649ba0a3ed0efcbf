package types

// EpochSeq is assigned once from the per-study high-water mark and never
// reused, even after deletions.
type Epoch struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID     uint    `gorm:"column:soa_id;not null;index" json:"soa_id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	OrderIndex  int     `gorm:"column:order_index;not null" json:"order_index"`
	EpochSeq    int     `gorm:"column:epoch_seq;not null" json:"epoch_seq"`
	Label       *string `gorm:"column:epoch_label" json:"epoch_label,omitempty"`
	Description *string `gorm:"column:epoch_description" json:"epoch_description,omitempty"`
}

func (Epoch) TableName() string { return "epoch" }
