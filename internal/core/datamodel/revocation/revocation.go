package revocation

import "time"

// RevokedToken is keyed by the signature segment of a JWT, the part after the last dot.
type RevokedToken struct {
	Sig string    `gorm:"column:sig;primaryKey"`
	Exp time.Time `gorm:"column:exp;not null;index"`
}

func (RevokedToken) TableName() string {
	return "revoked_token"
}
