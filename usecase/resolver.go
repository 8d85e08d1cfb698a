package usecase

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/wadesk/wadesk/domains/agent"
	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/pkg/utils"
)

type customerResolver struct {
	customers customer.ICustomerRepository
	agents    agent.IAgentRepository
}

// NewCustomerResolver builds the first-contact resolver: phone → customer,
// creating the customer and assigning the least-loaded agent when absent.
func NewCustomerResolver(customers customer.ICustomerRepository, agents agent.IAgentRepository) customer.ICustomerResolver {
	return &customerResolver{customers: customers, agents: agents}
}

func (s *customerResolver) Resolve(ctx context.Context, phone, contactNameHint string) (customer.Customer, error) {
	name := contactNameHint
	if name == "" {
		name = "Customer " + utils.LastDigits(phone, 4)
	}

	assigned, err := s.pickAgent(ctx)
	if err != nil {
		return customer.Customer{}, err
	}

	cust, created, err := s.customers.GetOrCreate(ctx, customer.Customer{
		Phone:           phone,
		Name:            name,
		AssignedAgentID: assigned,
	})
	if err != nil {
		return customer.Customer{}, err
	}
	if created {
		logrus.WithFields(logrus.Fields{
			"customer_id": cust.ID,
			"phone":       phone,
			"agent_id":    derefOrEmpty(assigned),
		}).Info("Customer created on first contact")
		return cust, nil
	}

	// Legacy rows may predate assignment; backfill without ever overwriting
	// an existing agent.
	if cust.AssignedAgentID == nil && assigned != nil {
		updated, err := s.customers.AttachAgent(ctx, cust.ID, *assigned)
		if err != nil {
			return customer.Customer{}, err
		}
		if updated {
			cust.AssignedAgentID = assigned
		} else {
			// A concurrent request attached an agent first; re-read theirs.
			cust, err = s.customers.GetByID(ctx, cust.ID)
			if err != nil {
				return customer.Customer{}, err
			}
		}
	}
	return cust, nil
}

func (s *customerResolver) pickAgent(ctx context.Context) (*string, error) {
	ag, err := s.agents.LeastLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if ag == nil {
		return nil, nil
	}
	id := ag.ID
	return &id, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
