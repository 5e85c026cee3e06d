package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// SweepStore runs the expiry sweep over its own connection pool, separate from
// the one serving requests.
type SweepStore struct {
	db *sqlx.DB
}

func NewSweepStore(db *sqlx.DB) *SweepStore {
	return &SweepStore{db: db}
}

func (s *SweepStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := s.db.Rebind(`DELETE FROM revoked_token WHERE exp < ?`)
	res, err := s.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SweepStore) Close() error {
	return s.db.Close()
}
