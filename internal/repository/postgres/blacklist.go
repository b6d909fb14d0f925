package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const blacklistTable = "accounts.blacklist_entries"

// BlacklistRepository implements port.BlacklistRepository using PostgreSQL.
type BlacklistRepository struct {
	pool    *pgxpool.Pool
	db      pgTxExecutor
	builder squirrel.StatementBuilderType
}

// NewBlacklistRepository wires a PostgreSQL-backed blacklist repository.
func NewBlacklistRepository(pool *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{
		pool:    pool,
		db:      pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithExecutor returns a repository instance operating against the supplied
// executor.
func (r *BlacklistRepository) WithExecutor(db pgTxExecutor) *BlacklistRepository {
	if db == nil {
		return r
	}
	return &BlacklistRepository{
		pool:    r.pool,
		db:      db,
		builder: r.builder,
	}
}

// blacklistTxRetries bounds the re-runs of the serializable transaction
// after a serialization failure (SQLSTATE 40001).
const blacklistTxRetries = 3

// BlacklistUser blocks the account, revokes its session and upserts the
// blacklist entry with the offending address. The writes run inside a
// serializable transaction so concurrent blacklistings of the same user
// converge to one entry with every address recorded; aborted transactions
// are retried.
func (r *BlacklistRepository) BlacklistUser(ctx context.Context, userID, ip string) error {
	var err error
	for attempt := 0; attempt <= blacklistTxRetries; attempt++ {
		err = r.blacklistUserTx(ctx, userID, ip)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func (r *BlacklistRepository) blacklistUserTx(ctx context.Context, userID, ip string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin blacklist transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE accounts.accounts
		 SET is_blocked = TRUE, refresh_token_hash = NULL, updated_at = now()
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("block account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts.blacklist_entries (id, user_id, ips)
		 VALUES ($1, $2, ARRAY[$3])
		 ON CONFLICT (user_id) DO UPDATE
		 SET ips = CASE
		         WHEN $3 = ANY (accounts.blacklist_entries.ips) THEN accounts.blacklist_entries.ips
		         ELSE array_append(accounts.blacklist_entries.ips, $3)
		     END,
		     updated_at = now()`,
		uuid.NewString(), userID, ip,
	)
	if err != nil {
		return fmt.Errorf("upsert blacklist entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit blacklist transaction: %w", err)
	}

	return nil
}

// IsUserBlacklisted reports whether an entry exists for the user.
func (r *BlacklistRepository) IsUserBlacklisted(ctx context.Context, userID string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From(blacklistTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build blacklist lookup sql: %w", err)
	}

	var one int
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup blacklist entry: %w", err)
	}

	return true, nil
}

// GetByUser returns the blacklist entry for the user.
func (r *BlacklistRepository) GetByUser(ctx context.Context, userID string) (*domain.BlacklistEntry, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "ips", "created_at", "updated_at").
		From(blacklistTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build blacklist select sql: %w", err)
	}

	var entry domain.BlacklistEntry
	err = r.db.QueryRow(ctx, stmt, args...).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.IPs,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan blacklist entry: %w", err)
	}

	return &entry, nil
}

var _ port.BlacklistRepository = (*BlacklistRepository)(nil)
