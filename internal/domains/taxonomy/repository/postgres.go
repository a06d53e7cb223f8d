package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/taxonomy/model"
	"yamdb-backend/internal/guard"
	"yamdb-backend/internal/shared/utils"
	"yamdb-backend/pkg/database"
)

type postgresRepository struct {
	db   database.Querier
	kind model.Kind
}

func NewPostgresRepository(db database.Querier, kind model.Kind) Repository {
	return &postgresRepository{db: db, kind: kind}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) Repository {
	return &postgresRepository{db: tx, kind: r.kind}
}

func (r *postgresRepository) List(ctx context.Context, search string, offset, limit int) ([]*model.Term, int64, error) {
	var where utils.WhereBuilder
	if search != "" {
		where.Add("name ILIKE ?", utils.ContainsPattern(search))
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", r.kind.Table, where.Clause())
	if err := r.db.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind.Table, err)
	}

	limitArg, offsetArg := where.NextArg(limit), where.NextArg(offset)
	query := fmt.Sprintf(
		"SELECT id, name, slug FROM %s %s ORDER BY name, id LIMIT %s OFFSET %s",
		r.kind.Table, where.Clause(), limitArg, offsetArg,
	)

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind.Table, err)
	}

	terms, err := pgx.CollectRows(rows, scanTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", r.kind.Table, err)
	}
	return terms, total, nil
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*model.Term, bool, error) {
	query := fmt.Sprintf("SELECT id, name, slug FROM %s WHERE slug = $1", r.kind.Table)

	rows, err := r.db.Query(ctx, query, slug)
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", r.kind.Name, err)
	}

	term, err := pgx.CollectExactlyOneRow(rows, scanTerm)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", r.kind.Name, err)
	}
	return term, true, nil
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)", r.kind.Table)
	if err := r.db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s slug: %w", r.kind.Name, err)
	}
	return exists, nil
}

func (r *postgresRepository) Create(ctx context.Context, term *model.Term) error {
	query := fmt.Sprintf("INSERT INTO %s (name, slug) VALUES ($1, $2) RETURNING id", r.kind.Table)

	err := r.db.QueryRow(ctx, query, term.Name, term.Slug).Scan(&term.ID)
	if err != nil {
		return guard.Translate(err, guard.Conflicts{
			r.kind.SlugConstraint: r.kind.ErrDuplicate.WithMessage("%s with slug %q already exists", r.kind.Name, term.Slug),
		})
	}
	return nil
}

// DeleteBySlug relies on the foreign keys: categories null out titles.category_id,
// genres cascade to title_genres.
func (r *postgresRepository) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE slug = $1", r.kind.Table)

	tag, err := r.db.Exec(ctx, query, slug)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.kind.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTerm(row pgx.CollectableRow) (*model.Term, error) {
	var t model.Term
	err := row.Scan(&t.ID, &t.Name, &t.Slug)
	return &t, err
}
