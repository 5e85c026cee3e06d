package datamodel

import (
	"context"

	exeatDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/exeat"
	revocationDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/revocation"
	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table model in dependency order, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.UserType{},
		&exeatDatamodel.ExeatRequestStatus{},
		&userDatamodel.User{},
		&userDatamodel.Guardian{},
		&userDatamodel.Student{},
		&userDatamodel.Staff{},
		&userDatamodel.SecurityOperative{},
		&exeatDatamodel.ExeatRequest{},
		&revocationDatamodel.RevokedToken{},
	}
}

// SeedReferenceData upserts the user_type and exeat_request_status rows so the
// stored ids always match the reference enums.
func SeedReferenceData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range reference.UserTypes() {
			row := userDatamodel.UserType{ID: int64(t), TypeName: t.String()}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"type_name"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		for _, s := range reference.ExeatStatuses() {
			row := exeatDatamodel.ExeatRequestStatus{ID: int64(s), StatusName: s.String()}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status_name"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Migrate creates or updates the schema through gorm. The goose migrations under
// db/migrations are the source of truth for postgres; this is used for sqlite.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return err
	}
	return SeedReferenceData(ctx, db)
}
