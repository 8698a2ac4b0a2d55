package repository

import (
	"time"

	"github.com/kursadbilgin/lead-dispatcher/internal/domain"
)

// LeadDataModel is the persistence model for the leaddata table. Timestamps
// are stored as ISO8601 text.
type LeadDataModel struct {
	ID        uint          `gorm:"primaryKey;autoIncrement"`
	Name      string        `gorm:"type:text;not null"`
	Phone     string        `gorm:"type:text;not null"`
	Status    domain.Status `gorm:"type:text;not null"`
	Timestamp string        `gorm:"type:text;not null"`
}

func (LeadDataModel) TableName() string {
	return "leaddata"
}

func leadDataModelFromDomain(rec *domain.DispatchRecord) *LeadDataModel {
	if rec == nil {
		return nil
	}

	return &LeadDataModel{
		Name:      rec.Name,
		Phone:     rec.Phone,
		Status:    rec.Status,
		Timestamp: rec.SentAt.UTC().Format(time.RFC3339),
	}
}
