package types

// ActivityConcept links an activity to a biomedical concept. ConceptTitle is
// captured at assignment time and never refreshed from the external source;
// snapshots and rollback rely on the stored value.
type ActivityConcept struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID   uint   `gorm:"column:activity_id;not null;index" json:"activity_id"`
	ConceptCode  string `gorm:"column:concept_code;not null" json:"code"`
	ConceptTitle string `gorm:"column:concept_title" json:"title"`
}

func (ActivityConcept) TableName() string { return "activity_concept" }
