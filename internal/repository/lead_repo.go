package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/lead-dispatcher/internal/domain"
	"gorm.io/gorm"
)

// LeadRepository is the persistent dedupe store port: a key-existence check
// and an append, keyed by normalized phone.
type LeadRepository interface {
	// Exists reports whether a normalized phone has already been recorded.
	Exists(ctx context.Context, phone string) (bool, error)
	// Record appends a dispatch record. Returns domain.ErrDuplicate when the
	// phone is already present (unique constraint at the storage layer).
	Record(ctx context.Context, rec *domain.DispatchRecord) error
}

type GormLeadRepo struct {
	db *gorm.DB
}

func NewGormLeadRepo(db *gorm.DB) *GormLeadRepo {
	return &GormLeadRepo{db: db}
}

func (r *GormLeadRepo) Exists(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeadDataModel{}).
		Where("phone = ?", phone).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormLeadRepo) Record(ctx context.Context, rec *domain.DispatchRecord) error {
	model := leadDataModelFromDomain(rec)
	err := r.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}
	return err
}
