package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/lead-dispatcher/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_leaddata",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.LeadDataModel{}); err != nil {
					return err
				}
				// The unique index is the real duplicate guard: an insert
				// rejection is the authoritative duplicate signal, not the
				// read-then-write existence check.
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_leaddata_phone ON leaddata (phone)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.LeadDataModel{})
			},
		},
	})

	return m.Migrate()
}
