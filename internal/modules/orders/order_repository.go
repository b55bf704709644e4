package orders

import (
	"context"
	"errors"
	"fmt"

	"homechef-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	CreateTx(ctx context.Context, tx pgx.Tx, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, user_id, chef_id, customer_name, phone,
		building, street, area, city, pincode, landmark,
		customer_latitude, customer_longitude, distance_km,
		subtotal, delivery_fee, discount, bonus_used, wallet_used, total,
		coupon_code, delivery_date, delivery_slot, status, payment_status, created_at, updated_at`

// scanOrder is a helper function to scan a row into an Order model.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.ChefID, &o.CustomerName, &o.Phone,
		&o.Building, &o.Street, &o.Area, &o.City, &o.Pincode, &o.Landmark,
		&o.CustomerLatitude, &o.CustomerLongitude, &o.DistanceKm,
		&o.Subtotal, &o.DeliveryFee, &o.Discount, &o.BonusUsed, &o.WalletUsed, &o.Total,
		&o.CouponCode, &o.DeliveryDate, &o.DeliverySlot, &o.Status, &o.PaymentStatus,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

// CreateTx inserts the order and its items inside tx.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, o *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (user_id, chef_id, customer_name, phone,
			building, street, area, city, pincode, landmark,
			customer_latitude, customer_longitude, distance_km,
			subtotal, delivery_fee, discount, bonus_used, wallet_used, total,
			coupon_code, delivery_date, delivery_slot, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24)
		RETURNING ` + orderColumns

	created, err := scanOrder(tx.QueryRow(ctx, query,
		o.UserID, o.ChefID, o.CustomerName, o.Phone,
		o.Building, o.Street, o.Area, o.City, o.Pincode, o.Landmark,
		o.CustomerLatitude, o.CustomerLongitude, o.DistanceKm,
		o.Subtotal, o.DeliveryFee, o.Discount, o.BonusUsed, o.WalletUsed, o.Total,
		o.CouponCode, o.DeliveryDate, o.DeliverySlot, o.Status, o.PaymentStatus,
	))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateTx: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "menu_item_id", "name", "category", "price", "quantity"},
		pgx.CopyFromSlice(len(o.Items), func(i int) ([]any, error) {
			it := o.Items[i]
			return []any{created.ID, it.MenuItemID, it.Name, it.Category, it.Price, it.Quantity}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateTx: insert items: %w", err)
	}

	created.Items = o.Items
	return created, nil
}

// FindByID retrieves a single order and its items.
func (r *Repository) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT menu_item_id, name, category, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID: items: %w", err)
	}
	order.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		var it models.OrderItem
		err := row.Scan(&it.MenuItemID, &it.Name, &it.Category, &it.Price, &it.Quantity)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID: items: %w", err)
	}
	return order, nil
}

// ListByUserID retrieves a page of a user's orders, newest first, with the total count.
func (r *Repository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID: count: %w", err)
	}

	offset := (page - 1) * limit
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByUserID: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID: %w", err)
	}
	return orders, total, nil
}
