package types

import (
	"time"
)

type Element struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID     uint      `gorm:"column:soa_id;not null;index" json:"soa_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Label       *string   `gorm:"column:label" json:"label,omitempty"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	StartRule   *string   `gorm:"column:testrl" json:"testrl,omitempty"`
	EndRule     *string   `gorm:"column:teenrl" json:"teenrl,omitempty"`
	OrderIndex  int       `gorm:"column:order_index;not null" json:"order_index"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Element) TableName() string { return "element" }
