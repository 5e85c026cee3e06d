package postgres

import (
	"context"
	"time"

	revocationDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/revocation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Revoke upserts the signature so revoking the same token twice is a no-op.
func (r *LedgerRepository) Revoke(ctx context.Context, sig string, exp time.Time) error {
	row := revocationDatamodel.RevokedToken{Sig: sig, Exp: exp.UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sig"}},
		DoUpdates: clause.AssignmentColumns([]string{"exp"}),
	}).Create(&row).Error
}

func (r *LedgerRepository) IsRevoked(ctx context.Context, sig string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&revocationDatamodel.RevokedToken{}).
		Where("sig = ?", sig).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
