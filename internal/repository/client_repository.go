package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-ledger/internal/domain"
)

const clientColumns = `c.id, c.route_id, c.name, c.national_id, c.phone, c.address, c.status, c.created_at, c.updated_at`

type clientRepository struct {
	db sqlx.ExtContext
}

func NewClientRepository(db sqlx.ExtContext) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, route_id, name, national_id, phone, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.RouteID,
		client.Name,
		client.NationalID,
		client.Phone,
		client.Address,
		client.Status,
		client.CreatedAt,
		client.UpdatedAt,
	)

	return err
}

func (r *clientRepository) GetByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = $1`
	return r.get(ctx, query, clientID)
}

func (r *clientRepository) GetByIDForActor(ctx context.Context, clientID uuid.UUID, actorID string) (*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		JOIN routes rt ON rt.id = c.route_id
		WHERE c.id = $1 AND rt.user_id = $2
	`
	return r.get(ctx, query, clientID, actorID)
}

func (r *clientRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Client, error) {
	var client domain.Client
	err := sqlx.GetContext(ctx, r.db, &client, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, national_id = $3, phone = $4, address = $5, status = $6, updated_at = $7
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.NationalID,
		client.Phone,
		client.Address,
		client.Status,
		client.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireAffected(res)
}
