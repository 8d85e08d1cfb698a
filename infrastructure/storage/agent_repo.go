package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wadesk/wadesk/domains/agent"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"gorm.io/gorm"
)

type AgentGormRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) *AgentGormRepository {
	return &AgentGormRepository{db: db}
}

func (r *AgentGormRepository) Create(ctx context.Context, ag agent.Agent) (agent.Agent, error) {
	if ag.ID == "" {
		ag.ID = uuid.NewString()
	}
	if ag.Role == "" {
		ag.Role = agent.RoleAgent
	}
	m := agentModel{ID: ag.ID, Name: ag.Name, Role: string(ag.Role)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return agent.Agent{}, err
	}
	return fromAgentModel(m), nil
}

func (r *AgentGormRepository) GetByID(ctx context.Context, id string) (agent.Agent, error) {
	var m agentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return agent.Agent{}, pkgError.NotFoundError("agent not found: " + id)
		}
		return agent.Agent{}, err
	}
	return fromAgentModel(m), nil
}

func (r *AgentGormRepository) List(ctx context.Context) ([]agent.Agent, error) {
	var models []agentModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]agent.Agent, len(models))
	for i, m := range models {
		res[i] = fromAgentModel(m)
	}
	return res, nil
}

// LeastLoaded picks the role=agent account with the fewest assigned customers,
// ties broken by lowest id. The count is a point-in-time read: concurrent
// picks may both see the same least-loaded agent, which is acceptable.
func (r *AgentGormRepository) LeastLoaded(ctx context.Context) (*agent.Agent, error) {
	var m agentModel
	err := r.db.WithContext(ctx).
		Table("agents").
		Select("agents.*").
		Joins("LEFT JOIN customers ON customers.assigned_agent_id = agents.id").
		Where("agents.role = ?", string(agent.RoleAgent)).
		Group("agents.id").
		Order("COUNT(customers.id) ASC, agents.id ASC").
		Limit(1).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ag := fromAgentModel(m)
	return &ag, nil
}
