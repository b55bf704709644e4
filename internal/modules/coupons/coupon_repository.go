package coupons

import (
	"context"
	"errors"
	"fmt"

	"homechef-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryInterface interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	RedeemTx(ctx context.Context, tx pgx.Tx, code string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
	SELECT id, code, kind, value, max_discount, min_order_amount, expires_at, is_active, usage_limit, used_count
	FROM coupons
	WHERE code = upper($1)
	`
	var c models.Coupon
	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Kind, &c.Value, &c.MaxDiscount, &c.MinOrderAmount,
		&c.ExpiresAt, &c.IsActive, &c.UsageLimit, &c.UsedCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByCode: %w", err)
	}
	return &c, nil
}

// RedeemTx counts one use of the coupon. An exhausted, expired or inactive
// coupon affects no row and yields ErrInvalidCoupon.
func (r *Repository) RedeemTx(ctx context.Context, tx pgx.Tx, code string) error {
	query := `
	UPDATE coupons
	SET used_count = used_count + 1
	WHERE code = upper($1)
	  AND is_active
	  AND (expires_at IS NULL OR expires_at > NOW())
	  AND (usage_limit IS NULL OR used_count < usage_limit)
	`
	cmdTag, err := tx.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("repository.RedeemTx: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrInvalidCoupon
	}
	return nil
}
