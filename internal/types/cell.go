package types

// Cell is a sparse visit-by-activity matrix intersection. Blank statuses are
// never stored; clearing a cell deletes its row.
type Cell struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StudyID    uint   `gorm:"column:soa_id;not null;index" json:"soa_id"`
	VisitID    uint   `gorm:"column:visit_id;not null;index" json:"visit_id"`
	ActivityID uint   `gorm:"column:activity_id;not null;index" json:"activity_id"`
	Status     string `gorm:"column:status;not null" json:"status"`
}

func (Cell) TableName() string { return "matrix_cells" }
