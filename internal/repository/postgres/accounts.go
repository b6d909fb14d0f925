package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const accountsTable = "accounts.accounts"

var accountColumns = []string{
	"id",
	"email",
	"phone_prefix",
	"phone_number",
	"first_name",
	"last_name",
	"password_hash",
	"refresh_token_hash",
	"role",
	"is_email_verified",
	"is_phone_verified",
	"is_2fa_enabled",
	"is_2fa_login_ongoing",
	"is_blocked",
	"email_verification_code_hash",
	"email_verification_expires_at",
	"phone_verification_code_hash",
	"phone_verification_expires_at",
	"password_reset_code_hash",
	"password_reset_expires_at",
	"two_factor_code_hash",
	"two_factor_expires_at",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithExecutor returns a repository instance operating against the supplied
// executor, typically a transaction.
func (r *AccountRepository) WithExecutor(exec pgExecutor) *AccountRepository {
	if exec == nil {
		return r
	}
	return &AccountRepository{
		pool:    r.pool,
		exec:    exec,
		builder: r.builder,
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	var phonePrefix, phoneNumber any
	if account.Phone != nil {
		phonePrefix = account.Phone.Prefix
		phoneNumber = account.Phone.Number
	}

	codeValues := codeSlotValues(account)

	query := r.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Email,
			phonePrefix,
			phoneNumber,
			account.FirstName,
			account.LastName,
			account.PasswordHash,
			account.RefreshTokenHash,
			account.Role,
			account.IsEmailVerified,
			account.IsPhoneVerified,
			account.Is2FAEnabled,
			account.Is2FALoginOngoing,
			account.IsBlocked,
			codeValues[0], codeValues[1],
			codeValues[2], codeValues[3],
			codeValues[4], codeValues[5],
			codeValues[6], codeValues[7],
			account.CreatedAt,
			account.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// GetByPhone retrieves an account by its structured phone number.
func (r *AccountRepository) GetByPhone(ctx context.Context, prefix, number string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"phone_prefix": prefix, "phone_number": number})
}

// EmailInUse reports whether the email is already registered.
func (r *AccountRepository) EmailInUse(ctx context.Context, email string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From(accountsTable).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build email lookup sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup email: %w", err)
	}

	return true, nil
}

// Save persists all authentication-relevant fields in a single statement.
func (r *AccountRepository) Save(ctx context.Context, account domain.Account) error {
	var phonePrefix, phoneNumber any
	if account.Phone != nil {
		phonePrefix = account.Phone.Prefix
		phoneNumber = account.Phone.Number
	}

	codeValues := codeSlotValues(account)

	stmt, args, err := r.builder.Update(accountsTable).
		Set("email", account.Email).
		Set("phone_prefix", phonePrefix).
		Set("phone_number", phoneNumber).
		Set("first_name", account.FirstName).
		Set("last_name", account.LastName).
		Set("password_hash", account.PasswordHash).
		Set("refresh_token_hash", account.RefreshTokenHash).
		Set("role", account.Role).
		Set("is_email_verified", account.IsEmailVerified).
		Set("is_phone_verified", account.IsPhoneVerified).
		Set("is_2fa_enabled", account.Is2FAEnabled).
		Set("is_2fa_login_ongoing", account.Is2FALoginOngoing).
		Set("is_blocked", account.IsBlocked).
		Set("email_verification_code_hash", codeValues[0]).
		Set("email_verification_expires_at", codeValues[1]).
		Set("phone_verification_code_hash", codeValues[2]).
		Set("phone_verification_expires_at", codeValues[3]).
		Set("password_reset_code_hash", codeValues[4]).
		Set("password_reset_expires_at", codeValues[5]).
		Set("two_factor_code_hash", codeValues[6]).
		Set("two_factor_expires_at", codeValues[7]).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *AccountRepository) getBy(ctx context.Context, predicate squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From(accountsTable).
		Where(predicate).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}

// codeSlotValues flattens the four optional code slots into hash/expiry pairs.
func codeSlotValues(account domain.Account) [8]any {
	var out [8]any
	slots := []*domain.OneTimeCode{
		account.EmailVerificationCode,
		account.PhoneVerificationCode,
		account.PasswordResetCode,
		account.TwoFactorCode,
	}
	for i, code := range slots {
		if code != nil {
			out[i*2] = code.Hash
			out[i*2+1] = code.ExpiresAt
		}
	}
	return out
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account     domain.Account
		phonePrefix sql.NullString
		phoneNumber sql.NullString
		refreshHash sql.NullString
		codeHashes  [4]sql.NullString
		codeExpires [4]sql.NullTime
	)

	if err := row.Scan(
		&account.ID,
		&account.Email,
		&phonePrefix,
		&phoneNumber,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&refreshHash,
		&account.Role,
		&account.IsEmailVerified,
		&account.IsPhoneVerified,
		&account.Is2FAEnabled,
		&account.Is2FALoginOngoing,
		&account.IsBlocked,
		&codeHashes[0], &codeExpires[0],
		&codeHashes[1], &codeExpires[1],
		&codeHashes[2], &codeExpires[2],
		&codeHashes[3], &codeExpires[3],
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if phonePrefix.Valid && phoneNumber.Valid {
		account.Phone = &domain.Phone{Prefix: phonePrefix.String, Number: phoneNumber.String}
	}
	if refreshHash.Valid {
		hash := refreshHash.String
		account.RefreshTokenHash = &hash
	}

	slots := []domain.CodeSlot{
		domain.CodeSlotEmailVerification,
		domain.CodeSlotPhoneVerification,
		domain.CodeSlotPasswordReset,
		domain.CodeSlotTwoFactor,
	}
	for i, slot := range slots {
		if codeHashes[i].Valid && codeExpires[i].Valid {
			account.SetCode(slot, domain.OneTimeCode{
				Hash:      codeHashes[i].String,
				ExpiresAt: codeExpires[i].Time,
			})
		}
	}

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
