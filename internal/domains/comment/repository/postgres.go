package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/comment/model"
	"yamdb-backend/internal/guard"
	"yamdb-backend/pkg/database"
)

const reviewForeignKey = "comments_review_id_fkey"

type postgresRepository struct {
	db database.Querier
}

func NewPostgresRepository(db database.Querier) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) Repository {
	return &postgresRepository{db: tx}
}

// selectComment scopes every lookup to the review-under-title path.
const selectComment = `
	SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c
	JOIN reviews r ON r.id = c.review_id
	JOIN users u ON u.id = c.author_id
	WHERE r.title_id = $1 AND c.review_id = $2`

func (r *postgresRepository) ParentExists(ctx context.Context, parent model.Parent, lock bool) (bool, error) {
	query := `SELECT id FROM reviews WHERE title_id = $1 AND id = $2`
	if lock {
		query += ` FOR SHARE`
	}

	var id int64
	err := r.db.QueryRow(ctx, query, parent.TitleID, parent.ReviewID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return true, nil
}

func (r *postgresRepository) List(ctx context.Context, q model.ListQuery) ([]*model.Comment, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments WHERE review_id = $1`, q.Parent.ReviewID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.db.Query(ctx,
		selectComment+` ORDER BY c.pub_date DESC, c.id DESC LIMIT $3 OFFSET $4`,
		q.Parent.TitleID, q.Parent.ReviewID, q.Limit, q.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, scanComment)
	if err != nil {
		return nil, 0, fmt.Errorf("scan comments: %w", err)
	}
	return comments, total, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, parent model.Parent, id int64) (*model.Comment, bool, error) {
	return r.findOne(ctx, selectComment+` AND c.id = $3`, parent.TitleID, parent.ReviewID, id)
}

func (r *postgresRepository) FindForUpdate(ctx context.Context, parent model.Parent, id int64) (*model.Comment, bool, error) {
	return r.findOne(ctx, selectComment+` AND c.id = $3 FOR UPDATE OF c`, parent.TitleID, parent.ReviewID, id)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Comment, bool, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("find comment: %w", err)
	}
	comment, err := pgx.CollectExactlyOneRow(rows, scanComment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find comment: %w", err)
	}
	return comment, true, nil
}

func (r *postgresRepository) Create(ctx context.Context, comment *model.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (review_id, author_id, text) VALUES ($1, $2, $3) RETURNING id, pub_date`,
		comment.ReviewID, comment.AuthorID, comment.Text,
	).Scan(&comment.ID, &comment.PubDate)
	if err != nil {
		return guard.Translate(err, guard.Conflicts{reviewForeignKey: model.ErrReviewNotFound})
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, comment *model.Comment) error {
	if _, err := r.db.Exec(ctx, `UPDATE comments SET text = $2 WHERE id = $1`, comment.ID, comment.Text); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func scanComment(row pgx.CollectableRow) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate); err != nil {
		return nil, err
	}
	return &c, nil
}
