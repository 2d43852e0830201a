package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/segyhp/installment-ledger/internal/domain"
)

type ClientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	return r.db.WithContext(ctx).Create(toClientRecord(c)).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", clientID))
}

func (r *ClientRepository) GetByIDForActor(ctx context.Context, clientID uuid.UUID, actorID string) (*domain.Client, error) {
	q := r.db.WithContext(ctx).
		Select("clients.*").
		Joins("JOIN routes ON routes.id = clients.route_id").
		Where("clients.id = ? AND routes.user_id = ?", clientID, actorID)
	return r.first(q)
}

func (r *ClientRepository) first(q *gorm.DB) (*domain.Client, error) {
	var out clientRecord
	if err := q.First(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out.toDomain(), nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	return r.db.WithContext(ctx).Save(toClientRecord(c)).Error
}

type RouteRepository struct{ db *gorm.DB }

func NewRouteRepository(db *gorm.DB) *RouteRepository { return &RouteRepository{db: db} }

func (r *RouteRepository) Create(ctx context.Context, rt *domain.Route) error {
	return r.db.WithContext(ctx).Create(toRouteRecord(rt)).Error
}

func (r *RouteRepository) GetByID(ctx context.Context, routeID uuid.UUID) (*domain.Route, error) {
	var out routeRecord
	if err := r.db.WithContext(ctx).Where("id = ?", routeID).First(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out.toDomain(), nil
}
