package sqlstore

import (
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	"github.com/jmoiron/sqlx"
)

// Tx обёртка над sqlx.Tx
type Tx struct {
	querier
	tx *sqlx.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

var _ persistence.Transaction = (*Tx)(nil)
