package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/guard"
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
	guard.Username: model.ErrUsernameTaken,
	guard.Email:    model.ErrEmailTaken,
}

const userColumns = `
	id, username, email, first_name, last_name, bio, role, is_superuser,
	confirmation_code_hash, confirmation_expires_at, delivery_status, created_at, updated_at`

func (r *postgresRepository) List(ctx context.Context, q model.ListQuery) ([]*model.User, int64, error) {
	w := &utils.WhereBuilder{}
	if q.Search != "" {
		w.Add("username ILIKE ?", utils.ContainsPattern(q.Search))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users `+w.Clause(), w.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limitArg, offsetArg := w.NextArg(q.Limit), w.NextArg(q.Offset())
	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY username LIMIT %s OFFSET %s`,
		userColumns, w.Clause(), limitArg, offsetArg)

	rows, err := r.db.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, 0, fmt.Errorf("scan users: %w", err)
	}
	return users, total, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.User, bool, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) FindByUsername(ctx context.Context, username string) (*model.User, bool, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresRepository) LockByUsername(ctx context.Context, username string) (*model.User, bool, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 FOR UPDATE`, username)
}

func (r *postgresRepository) LockByID(ctx context.Context, id int64) (*model.User, bool, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresRepository) LockByUsernameOrEmail(ctx context.Context, username, email string) ([]*model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 ORDER BY id FOR UPDATE`,
		username, email,
	)
	if err != nil {
		return nil, fmt.Errorf("lock users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("lock users: %w", err)
	}
	return users, nil
}

func (r *postgresRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.User, bool, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	return u, true, nil
}

func (r *postgresRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, excludeID)
}

func (r *postgresRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, excludeID)
}

func (r *postgresRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Create(ctx context.Context, u *model.User) error {
	if u.DeliveryStatus == "" {
		u.DeliveryStatus = model.DeliveryNone
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role, u.IsSuperuser, u.DeliveryStatus,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return guard.Translate(err, conflicts)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5, bio = $6, role = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role,
	).Scan(&u.UpdatedAt)
	if err != nil {
		return guard.Translate(err, conflicts)
	}
	return nil
}

// Delete cascades to the user's reviews and comments.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetConfirmation(ctx context.Context, id int64, hash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET confirmation_code_hash = $2, confirmation_expires_at = $3, delivery_status = $4, updated_at = NOW()
		WHERE id = $1`,
		id, hash, expiresAt, model.DeliveryPending,
	)
	if err != nil {
		return fmt.Errorf("set confirmation code: %w", err)
	}
	return nil
}

func (r *postgresRepository) ConsumeConfirmation(ctx context.Context, id int64, hash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET confirmation_code_hash = NULL, confirmation_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND confirmation_code_hash = $2`,
		id, hash,
	)
	if err != nil {
		return false, fmt.Errorf("consume confirmation code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) BurnConfirmation(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET confirmation_code_hash = NULL, confirmation_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("burn confirmation code: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetDeliveryStatus(ctx context.Context, id int64, status model.DeliveryStatus) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET delivery_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set delivery status: %w", err)
	}
	return nil
}

// ListFailedDeliveries returns users whose last code never reached them, oldest first.
func (r *postgresRepository) ListFailedDeliveries(ctx context.Context, limit int) ([]*model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE delivery_status = $1 ORDER BY updated_at LIMIT $2`,
		model.DeliveryFailed, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list failed deliveries: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan failed deliveries: %w", err)
	}
	return users, nil
}

func (r *postgresRepository) ClearExpiredConfirmations(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET confirmation_code_hash = NULL, confirmation_expires_at = NULL
		WHERE confirmation_expires_at IS NOT NULL AND confirmation_expires_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("clear expired confirmation codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.CollectableRow) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio, &u.Role, &u.IsSuperuser,
		&u.ConfirmationCodeHash, &u.ConfirmationExpiresAt, &u.DeliveryStatus, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
