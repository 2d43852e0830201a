package domain

import (
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientStatusActive     ClientStatus = "active"
	ClientStatusDelinquent ClientStatus = "delinquent"
)

// Route is a collection route owned by one field agent.
type Route struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	CollectionDay string    `json:"collection_day" db:"collection_day"`
	UserID        string    `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Client is a borrower on a route.
type Client struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	RouteID    uuid.UUID    `json:"route_id" db:"route_id"`
	Name       string       `json:"name" db:"name"`
	NationalID string       `json:"national_id" db:"national_id"`
	Phone      string       `json:"phone" db:"phone"`
	Address    string       `json:"address" db:"address"`
	Status     ClientStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// SetStatus changes the status and reports whether it actually changed.
func (c *Client) SetStatus(s ClientStatus) bool {
	if c.Status == s {
		return false
	}
	c.Status = s
	c.UpdatedAt = time.Now().UTC()
	return true
}
