package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is one persisted evaluation. Rows are written once and never updated.
type Report struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        string    `gorm:"type:text;not null;index:idx_reports_owner_created,priority:1" json:"ownerId"`
	JobDescription string    `gorm:"type:text" json:"jobDescription"`
	MatchScore     float64   `gorm:"type:double precision" json:"matchScore"`
	Skills         []string  `gorm:"type:jsonb;serializer:json" json:"skills"`
	Feedback       string    `gorm:"type:text" json:"feedback"`
	CreatedAt      time.Time `gorm:"not null;index:idx_reports_owner_created,priority:2,sort:desc" json:"createdAt"`
}

func (Report) TableName() string {
	return "reports"
}
