package agent

import "context"

type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Agent is a sales agent (or admin) account. Accounts are managed outside the
// relay core; the pipeline only reads them for assignment and reference checks.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type IAgentRepository interface {
	Create(ctx context.Context, ag Agent) (Agent, error)
	GetByID(ctx context.Context, id string) (Agent, error)
	List(ctx context.Context) ([]Agent, error)
	// LeastLoaded returns the role=agent account with the fewest assigned
	// customers, ties broken by lowest id. Nil when no agents exist. The count
	// is read without a lock; concurrent picks may transiently skew load.
	LeastLoaded(ctx context.Context) (*Agent, error)
}
