package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/title/model"
	"yamdb-backend/internal/guard"
	"yamdb-backend/internal/rating"
	"yamdb-backend/internal/shared/utils"
	"yamdb-backend/pkg/database"
)

type postgresRepository struct {
	db database.Querier
}

func NewPostgresRepository(db database.Querier) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) Repository {
	return &postgresRepository{db: tx}
}

var conflicts = guard.Conflicts{
	guard.TitleNameYear: model.ErrDuplicateTitle,
}

const selectTitle = `
	SELECT t.id, t.name, t.year, t.description, c.name, c.slug, ` + rating.SQLExpr + ` AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN reviews r ON r.title_id = t.id`

const groupTitle = `GROUP BY t.id, c.id`

// buildWhere translates the filter into SQL. Slug matches are case-insensitive
// and exact; name matches are case-insensitive substrings.
func buildWhere(f model.Filter) *utils.WhereBuilder {
	w := &utils.WhereBuilder{}
	if f.Category != "" {
		w.Add("LOWER(c.slug) = LOWER(?)", f.Category)
	}
	if f.Genre != "" {
		w.Add(`EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND LOWER(g.slug) = LOWER(?))`, f.Genre)
	}
	if f.Name != "" {
		w.Add("t.name ILIKE ?", utils.ContainsPattern(f.Name))
	}
	if f.Year != nil {
		w.Add("t.year = ?", *f.Year)
	}
	return w
}

func (r *postgresRepository) List(ctx context.Context, q model.ListQuery) ([]*model.Title, int64, error) {
	where := buildWhere(q.Filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id ` + where.Clause()
	if err := r.db.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	limitArg, offsetArg := where.NextArg(q.Limit), where.NextArg(q.Offset())
	query := fmt.Sprintf("%s %s %s ORDER BY %s LIMIT %s OFFSET %s",
		selectTitle, where.Clause(), groupTitle, q.Ordering.SQL(), limitArg, offsetArg)

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	titles, err := pgx.CollectRows(rows, scanTitle)
	if err != nil {
		return nil, 0, fmt.Errorf("scan titles: %w", err)
	}

	if err := r.attachGenres(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.Title, bool, error) {
	rows, err := r.db.Query(ctx, selectTitle+` WHERE t.id = $1 `+groupTitle, id)
	if err != nil {
		return nil, false, fmt.Errorf("find title: %w", err)
	}

	title, err := pgx.CollectExactlyOneRow(rows, scanTitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find title: %w", err)
	}

	if err := r.attachGenres(ctx, []*model.Title{title}); err != nil {
		return nil, false, err
	}
	return title, true, nil
}

// attachGenres loads the genres of every title in one query.
func (r *postgresRepository) attachGenres(ctx context.Context, titles []*model.Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]int64, len(titles))
	byID := make(map[int64]*model.Title, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
		byID[t.ID] = t
		t.Genres = []model.TermRef{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT tg.title_id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = ANY($1)
		ORDER BY g.name, g.id`, ids)
	if err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var titleID int64
		var ref model.TermRef
		if err := rows.Scan(&titleID, &ref.Name, &ref.Slug); err != nil {
			return fmt.Errorf("scan title genre: %w", err)
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, ref)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) FindRecordForUpdate(ctx context.Context, id int64) (*model.Record, bool, error) {
	rec := &model.Record{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, year, description, category_id FROM titles WHERE id = $1 FOR UPDATE`, id,
	).Scan(&rec.ID, &rec.Name, &rec.Year, &rec.Description, &rec.CategoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lock title: %w", err)
	}
	return rec, true, nil
}

func (r *postgresRepository) NameYearTaken(ctx context.Context, name string, year int, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM titles WHERE name = $1 AND year = $2 AND id <> $3)`,
		name, year, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check title name/year: %w", err)
	}
	return taken, nil
}

// ResolveCategory takes a share lock so the category cannot be deleted before commit.
func (r *postgresRepository) ResolveCategory(ctx context.Context, slug string) (int64, bool, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM categories WHERE slug = $1 FOR SHARE`, slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve category: %w", err)
	}
	return id, true, nil
}

func (r *postgresRepository) ResolveGenres(ctx context.Context, slugs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT slug, id FROM genres WHERE slug = ANY($1) FOR SHARE`, slugs)
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slug string
		var id int64
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		out[slug] = id
	}
	return out, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, rec *model.Record) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		rec.Name, rec.Year, rec.Description, rec.CategoryID,
	).Scan(&rec.ID)
	if err != nil {
		return guard.Translate(err, conflicts)
	}
	return r.ReplaceGenres(ctx, rec.ID, rec.GenreIDs)
}

func (r *postgresRepository) Update(ctx context.Context, rec *model.Record) error {
	_, err := r.db.Exec(ctx,
		`UPDATE titles SET name = $2, year = $3, description = $4, category_id = $5 WHERE id = $1`,
		rec.ID, rec.Name, rec.Year, rec.Description, rec.CategoryID,
	)
	if err != nil {
		return guard.Translate(err, conflicts)
	}
	return nil
}

func (r *postgresRepository) ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM title_genres WHERE title_id = $1`, titleID); err != nil {
		return fmt.Errorf("clear title genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO title_genres (title_id, genre_id)
		 SELECT $1, g FROM UNNEST($2::bigint[]) AS g
		 ON CONFLICT DO NOTHING`,
		titleID, genreIDs,
	)
	if err != nil {
		return fmt.Errorf("link title genres: %w", err)
	}
	return nil
}

// Delete cascades to reviews, their comments and the genre links.
func (r *postgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete title: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTitle(row pgx.CollectableRow) (*model.Title, error) {
	var (
		t            model.Title
		categoryName *string
		categorySlug *string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Year, &t.Description, &categoryName, &categorySlug, &t.Rating); err != nil {
		return nil, err
	}
	if categorySlug != nil {
		t.Category = &model.TermRef{Name: *categoryName, Slug: *categorySlug}
	}
	return &t, nil
}
