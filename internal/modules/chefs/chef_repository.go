package chefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"homechef-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for chef storage.
type RepositoryInterface interface {
	FindByID(ctx context.Context, chefID int64) (*models.Chef, error)
	UpdateDeliveryProfile(ctx context.Context, chefID int64, req models.UpdateDeliveryProfileRequest) (*models.Chef, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const chefColumns = `id, name, is_active, min_order_amount, default_delivery_fee, delivery_fee_per_km,
		free_delivery_threshold, max_delivery_distance_km, latitude, longitude,
		COALESCE(service_pincodes, '{}'), created_at, updated_at`

func scanChef(row pgx.Row) (*models.Chef, error) {
	var c models.Chef
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.IsActive,
		&c.MinOrderAmount,
		&c.DefaultDeliveryFee,
		&c.DeliveryFeePerKm,
		&c.FreeDeliveryThreshold,
		&c.MaxDeliveryDistanceKm,
		&c.Latitude,
		&c.Longitude,
		&c.ServicePincodes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan chef: %w", err)
	}
	return &c, nil
}

// FindByID retrieves a chef and its delivery profile.
func (r *Repository) FindByID(ctx context.Context, chefID int64) (*models.Chef, error) {
	query := `SELECT ` + chefColumns + ` FROM chefs WHERE id = $1`
	chef, err := scanChef(r.db.QueryRow(ctx, query, chefID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return chef, nil
}

// UpdateDeliveryProfile changes only the fields present in req.
func (r *Repository) UpdateDeliveryProfile(ctx context.Context, chefID int64, req models.UpdateDeliveryProfileRequest) (*models.Chef, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.DefaultDeliveryFee != nil {
		add("default_delivery_fee", *req.DefaultDeliveryFee)
	}
	if req.DeliveryFeePerKm != nil {
		add("delivery_fee_per_km", *req.DeliveryFeePerKm)
	}
	if req.FreeDeliveryThreshold != nil {
		add("free_delivery_threshold", *req.FreeDeliveryThreshold)
	}
	if req.MaxDeliveryDistanceKm != nil {
		add("max_delivery_distance_km", *req.MaxDeliveryDistanceKm)
	}
	if req.MinOrderAmount != nil {
		add("min_order_amount", *req.MinOrderAmount)
	}
	if req.Latitude != nil {
		add("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		add("longitude", *req.Longitude)
	}
	if req.ServicePincodes != nil {
		add("service_pincodes", *req.ServicePincodes)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, chefID)
	}

	args = append(args, chefID)
	query := fmt.Sprintf(`
		UPDATE chefs SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING `+chefColumns,
		strings.Join(setClauses, ", "), argIdx)

	chef, err := scanChef(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateDeliveryProfile: %w", err)
	}
	return chef, nil
}
