package types

import (
	"time"
)

type Study struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	StudyUID         *string   `gorm:"column:study_uid" json:"study_id,omitempty"`
	StudyLabel       *string   `gorm:"column:study_label" json:"study_label,omitempty"`
	StudyDescription *string   `gorm:"column:study_description" json:"study_description,omitempty"`
	// NextEpochSeq is the epoch sequence high-water mark. It only grows,
	// so sequence numbers freed by deleted epochs are never handed out again.
	NextEpochSeq int       `gorm:"column:next_epoch_seq;not null;default:0" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Study) TableName() string { return "soa" }
