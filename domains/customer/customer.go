package customer

import (
	"context"
	"time"
)

// Customer is a WhatsApp contact identified by canonical phone. Exactly one
// row exists per phone regardless of concurrent first-contact webhooks; the
// unique phone index is the race arbiter.
type Customer struct {
	ID              string    `json:"id"`
	Phone           string    `json:"phone"`
	Name            string    `json:"name"`
	AssignedAgentID *string   `json:"assigned_agent_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type ICustomerRepository interface {
	GetByID(ctx context.Context, id string) (Customer, error)
	GetByPhone(ctx context.Context, phone string) (Customer, error)
	// GetOrCreate inserts a customer with a conflict-tolerant insert. The
	// loser of a concurrent first-contact race gets the winner's row back,
	// never an error. created reports whether this call inserted the row.
	GetOrCreate(ctx context.Context, cust Customer) (out Customer, created bool, err error)
	// AttachAgent sets assigned_agent_id only while it is still null, so a
	// late backfill never overwrites an existing assignment.
	AttachAgent(ctx context.Context, customerID, agentID string) (bool, error)
	ListVisibleToAgent(ctx context.Context, agentID string) ([]Customer, error)
}

// ICustomerResolver maps a canonical phone to a Customer, creating one and
// assigning an agent on first contact.
type ICustomerResolver interface {
	Resolve(ctx context.Context, phone, contactNameHint string) (Customer, error)
}
