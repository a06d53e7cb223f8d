package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/review/model"
	"yamdb-backend/internal/guard"
	"yamdb-backend/pkg/database"
)

const (
	// titleForeignKey fires when the title vanished between the lock-free read and the insert.
	titleForeignKey = "reviews_title_id_fkey"
	scoreCheck      = "reviews_score_check"
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

const selectReview = `
	SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

func (r *postgresRepository) LockTitle(ctx context.Context, titleID int64) (bool, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM titles WHERE id = $1 FOR SHARE`, titleID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock title: %w", err)
	}
	return true, nil
}

func (r *postgresRepository) TitleExists(ctx context.Context, titleID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`, titleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) List(ctx context.Context, q model.ListQuery) ([]*model.Review, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE title_id = $1`, q.TitleID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.db.Query(ctx,
		selectReview+` WHERE r.title_id = $1 ORDER BY r.pub_date DESC, r.id DESC LIMIT $2 OFFSET $3`,
		q.TitleID, q.Limit, q.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, 0, fmt.Errorf("scan reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, titleID, id int64) (*model.Review, bool, error) {
	return r.findOne(ctx, selectReview+` WHERE r.title_id = $1 AND r.id = $2`, titleID, id)
}

func (r *postgresRepository) FindForUpdate(ctx context.Context, titleID, id int64) (*model.Review, bool, error) {
	return r.findOne(ctx, selectReview+` WHERE r.title_id = $1 AND r.id = $2 FOR UPDATE OF r`, titleID, id)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Review, bool, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("find review: %w", err)
	}
	review, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find review: %w", err)
	}
	return review, true, nil
}

func (r *postgresRepository) AuthorHasReviewed(ctx context.Context, titleID, authorID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`,
		titleID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing review: %w", err)
	}
	return exists, nil
}

// Create maps the unique and foreign key failures onto the same errors the
// service pre-checks report, so a lost race looks identical to an early rejection.
func (r *postgresRepository) Create(ctx context.Context, review *model.Review) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO reviews (title_id, author_id, text, score)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, pub_date`,
		review.TitleID, review.AuthorID, review.Text, review.Score,
	).Scan(&review.ID, &review.PubDate)
	if err != nil {
		return guard.Translate(err, guard.Conflicts{
			guard.ReviewTitleAuthor: model.DuplicateReview(review.TitleID, review.Author),
			titleForeignKey:         model.ErrTitleNotFound,
			scoreCheck:              model.ErrScoreOutOfRange,
		})
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, review *model.Review) error {
	_, err := r.db.Exec(ctx,
		`UPDATE reviews SET text = $2, score = $3 WHERE id = $1`,
		review.ID, review.Text, review.Score,
	)
	if err != nil {
		if translated := guard.Translate(err, guard.Conflicts{scoreCheck: model.ErrScoreOutOfRange}); translated != err {
			return translated
		}
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// Delete cascades to the review's comments.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(&rv.ID, &rv.TitleID, &rv.AuthorID, &rv.Author, &rv.Text, &rv.Score, &rv.PubDate)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
