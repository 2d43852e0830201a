package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-ledger/internal/domain"
)

type routeRepository struct {
	db sqlx.ExtContext
}

func NewRouteRepository(db sqlx.ExtContext) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) Create(ctx context.Context, route *domain.Route) error {
	query := `
		INSERT INTO routes (id, name, collection_day, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, route.ID, route.Name, route.CollectionDay, route.UserID, route.CreatedAt)
	return err
}

func (r *routeRepository) GetByID(ctx context.Context, routeID uuid.UUID) (*domain.Route, error) {
	query := `
		SELECT id, name, collection_day, user_id, created_at
		FROM routes
		WHERE id = $1
	`

	var route domain.Route
	err := sqlx.GetContext(ctx, r.db, &route, query, routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &route, nil
}
