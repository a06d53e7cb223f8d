// Package dbtest provides transaction fakes for service unit tests.
package dbtest

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Tx records how a transaction ended. Calling any other pgx.Tx method panics.
type Tx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
}

func (t *Tx) Commit(context.Context) error {
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// Beginner hands out fake transactions and keeps every one it started.
type Beginner struct {
	Txs []*Tx
	Err error
}

func (b *Beginner) Begin(context.Context) (pgx.Tx, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	tx := &Tx{}
	b.Txs = append(b.Txs, tx)
	return tx, nil
}

// Last returns the most recent transaction, or nil.
func (b *Beginner) Last() *Tx {
	if len(b.Txs) == 0 {
		return nil
	}
	return b.Txs[len(b.Txs)-1]
}
