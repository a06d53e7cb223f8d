// Package dataload bulk-loads seed files straight into the store. Rows go in
// with their own ids and bypass the API, so only table constraints apply.
package dataload

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"yamdb-backend/pkg/database"
)

// Result reports rows copied into one table.
type Result struct {
	Table string
	Rows  int64
}

type Options struct {
	// Clear empties every seeded table first, in the same transaction.
	Clear bool
}

type Loader struct {
	db     database.TxBeginner
	source Source
}

func NewLoader(db database.TxBeginner, source Source) *Loader {
	return &Loader{db: db, source: source}
}

// Load reads and converts every seed file, then copies them in a single
// transaction. A table without a file is skipped.
func (l *Loader) Load(ctx context.Context, opts Options) ([]Result, error) {
	batches, err := l.read(ctx)
	if err != nil {
		return nil, err
	}

	return database.WithTransactionResult(ctx, l.db, func(tx pgx.Tx) ([]Result, error) {
		if opts.Clear {
			if err := clearTables(ctx, tx); err != nil {
				return nil, err
			}
		}

		results := make([]Result, 0, len(batches))
		for _, b := range batches {
			n, err := tx.CopyFrom(ctx, pgx.Identifier{b.table}, b.columns, pgx.CopyFromRows(b.rows))
			if err != nil {
				return nil, fmt.Errorf("copy into %s: %w", b.table, err)
			}
			if err := resetSequence(ctx, tx, b.table); err != nil {
				return nil, err
			}
			log.Info().Str("table", b.table).Int64("rows", n).Msg("[DATALOAD] table loaded")
			results = append(results, Result{Table: b.table, Rows: n})
		}
		return results, nil
	})
}

// Clear deletes every seeded table, children first.
func (l *Loader) Clear(ctx context.Context) error {
	return database.WithTransaction(ctx, l.db, func(tx pgx.Tx) error {
		return clearTables(ctx, tx)
	})
}

func (l *Loader) read(ctx context.Context) ([]batch, error) {
	var batches []batch
	for _, t := range tables {
		records, err := l.source.Rows(ctx, t.file)
		if errors.Is(err, ErrNoFile) {
			log.Warn().Str("file", t.file).Msg("[DATALOAD] no seed file, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.file, err)
		}

		b, err := t.convert(records)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func clearTables(ctx context.Context, tx pgx.Tx) error {
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i].name
		if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{name}.Sanitize()); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
		log.Info().Str("table", name).Msg("[DATALOAD] table cleared")
	}
	return nil
}

// resetSequence moves the id sequence past the copied ids so later inserts
// through the API do not collide.
func resetSequence(ctx context.Context, tx pgx.Tx, table string) error {
	query := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s",
		table, pgx.Identifier{table}.Sanitize(),
	)
	if _, err := tx.Exec(ctx, query); err != nil {
		return fmt.Errorf("reset %s id sequence: %w", table, err)
	}
	return nil
}
