package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
)

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id           TEXT NOT NULL UNIQUE,
	subject_id            TEXT NOT NULL UNIQUE,
	display_name          TEXT NOT NULL,
	icon_url              TEXT NOT NULL DEFAULT '',
	email                 TEXT NOT NULL DEFAULT '',
	points                INTEGER NOT NULL DEFAULT 0,
	fitness_user_id       TEXT NOT NULL DEFAULT '',
	fitness_access_token  TEXT NOT NULL DEFAULT '',
	fitness_refresh_token TEXT NOT NULL DEFAULT '',
	fitness_token_expiry  TIMESTAMP,
	codehost_user_id      TEXT NOT NULL DEFAULT '',
	codehost_login        TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMP NOT NULL
);`

// SQLiteAccountRepository implements AccountRepository over database/sql.
type SQLiteAccountRepository struct {
	db *sql.DB
}

func NewSQLiteAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

// Migrate creates the accounts table if it does not exist.
func (r *SQLiteAccountRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, accountsSchema); err != nil {
		return fmt.Errorf("failed to create accounts schema: %w", err)
	}
	return nil
}

// CreateAccount inserts the account row. The UNIQUE constraint on subject_id
// makes duplicate materialization attempts fail with ErrAccountExists instead
// of producing a second row.
func (r *SQLiteAccountRepository) CreateAccount(ctx context.Context, account *models.Account) (int64, error) {
	if account.SubjectID == "" {
		return 0, errors.New("account subject id must not be empty")
	}
	if account.ExternalID == "" {
		account.ExternalID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			external_id, subject_id, display_name, icon_url, email, points,
			fitness_user_id, fitness_access_token, fitness_refresh_token, fitness_token_expiry,
			codehost_user_id, codehost_login, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ExternalID, account.SubjectID, account.DisplayName, account.IconURL,
		account.Email, account.Points,
		account.FitnessUserID, account.FitnessAccessToken, account.FitnessRefreshToken,
		account.FitnessTokenExpiry,
		account.CodeHostUserID, account.CodeHostLogin, account.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return 0, repository.ErrAccountExists
		}
		return 0, fmt.Errorf("failed to insert account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted account id: %w", err)
	}
	account.ID = id
	return id, nil
}

func (r *SQLiteAccountRepository) GetAccountBySubjectID(ctx context.Context, subjectID string) (*models.Account, error) {
	return r.getAccount(ctx, "subject_id = ?", subjectID)
}

func (r *SQLiteAccountRepository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getAccount(ctx, "id = ?", id)
}

func (r *SQLiteAccountRepository) getAccount(ctx context.Context, where string, arg any) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, external_id, subject_id, display_name, icon_url, email, points,
			fitness_user_id, fitness_access_token, fitness_refresh_token, fitness_token_expiry,
			codehost_user_id, codehost_login, created_at
		FROM accounts WHERE `+where, arg)

	var account models.Account
	var fitnessExpiry sql.NullTime
	err := row.Scan(
		&account.ID, &account.ExternalID, &account.SubjectID, &account.DisplayName,
		&account.IconURL, &account.Email, &account.Points,
		&account.FitnessUserID, &account.FitnessAccessToken, &account.FitnessRefreshToken,
		&fitnessExpiry,
		&account.CodeHostUserID, &account.CodeHostLogin, &account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	if fitnessExpiry.Valid {
		account.FitnessTokenExpiry = fitnessExpiry.Time
	}
	return &account, nil
}

func (r *SQLiteAccountRepository) UpdateFitnessTokens(ctx context.Context, id int64, tokens models.ProviderTokens) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET fitness_access_token = ?, fitness_refresh_token = ?, fitness_token_expiry = ?
		WHERE id = ?`,
		tokens.AccessToken, tokens.RefreshToken, tokens.Expiry, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update fitness tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}
