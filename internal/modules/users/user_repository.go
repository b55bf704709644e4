package users

import (
	"context"
	"errors"
	"fmt"

	"homechef-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines methods for interacting with user storage.
// The Tx methods run inside the caller's order transaction.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)

	CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) (*models.User, error)
	AdjustBalancesTx(ctx context.Context, tx pgx.Tx, userID string, walletDelta, bonusDelta float64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const userColumns = `id, name, phone, COALESCE(email, ''), role, password_hash, referral_code, referred_by,
		wallet_balance, bonus_balance, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Role, &user.PasswordHash,
		&user.ReferralCode, &user.ReferredBy, &user.WalletBalance, &user.BonusBalance,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindByPhone: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = upper($1)`
	user, err := scanUser(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindByReferralCode: %w", err)
	}
	return user, nil
}

// CreateTx inserts a user. A phone or referral code collision yields ErrConflict.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) (*models.User, error) {
	query := `
	INSERT INTO users (id, name, phone, email, role, password_hash, referral_code, referred_by,
		wallet_balance, bonus_balance)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
	ON CONFLICT DO NOTHING
	RETURNING ` + userColumns

	created, err := scanUser(tx.QueryRow(ctx, query,
		user.ID, user.Name, user.Phone, user.Email, user.Role, user.PasswordHash,
		user.ReferralCode, user.ReferredBy, user.WalletBalance, user.BonusBalance,
	))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateTx: %w", err)
	}
	return created, nil
}

// AdjustBalancesTx adds the deltas to the wallet and bonus balances. A debit that
// would take a balance below zero affects no row and yields ErrConflict.
func (r *Repository) AdjustBalancesTx(ctx context.Context, tx pgx.Tx, userID string, walletDelta, bonusDelta float64) error {
	query := `
	UPDATE users
	SET wallet_balance = wallet_balance + $2, bonus_balance = bonus_balance + $3, updated_at = NOW()
	WHERE id = $1 AND wallet_balance + $2 >= 0 AND bonus_balance + $3 >= 0
	`
	cmdTag, err := tx.Exec(ctx, query, userID, walletDelta, bonusDelta)
	if err != nil {
		return fmt.Errorf("repository.AdjustBalancesTx: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrConflict
	}
	return nil
}
