package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wadesk/wadesk/domains/customer"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

func (r *CustomerGormRepository) GetByID(ctx context.Context, id string) (customer.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customer.Customer{}, pkgError.NotFoundError("customer not found: " + id)
		}
		return customer.Customer{}, err
	}
	return fromCustomerModel(m), nil
}

func (r *CustomerGormRepository) GetByPhone(ctx context.Context, phone string) (customer.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).First(&m, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customer.Customer{}, pkgError.NotFoundError("customer not found for phone")
		}
		return customer.Customer{}, err
	}
	return fromCustomerModel(m), nil
}

// GetOrCreate resolves a customer by phone, inserting one when absent. The
// insert tolerates the unique-phone conflict: when two first-contact webhooks
// race, the loser re-reads and returns the winner's row instead of erroring.
func (r *CustomerGormRepository) GetOrCreate(ctx context.Context, cust customer.Customer) (customer.Customer, bool, error) {
	var m customerModel
	err := r.db.WithContext(ctx).First(&m, "phone = ?", cust.Phone).Error
	if err == nil {
		return fromCustomerModel(m), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return customer.Customer{}, false, err
	}

	m = customerModel{
		ID:              uuid.NewString(),
		Phone:           cust.Phone,
		Name:            cust.Name,
		AssignedAgentID: cust.AssignedAgentID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone"}}, DoNothing: true}).
		Create(&m)
	if res.Error != nil {
		return customer.Customer{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race: another request inserted this phone first.
		if err := r.db.WithContext(ctx).First(&m, "phone = ?", cust.Phone).Error; err != nil {
			return customer.Customer{}, false, err
		}
		return fromCustomerModel(m), false, nil
	}
	return fromCustomerModel(m), true, nil
}

// AttachAgent backfills assigned_agent_id for legacy rows that predate
// assignment. The WHERE guard keeps it from ever overwriting a non-null
// assignment, even under concurrent backfills.
func (r *CustomerGormRepository) AttachAgent(ctx context.Context, customerID, agentID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&customerModel{}).
		Where("id = ? AND assigned_agent_id IS NULL", customerID).
		Update("assigned_agent_id", agentID)
	return res.RowsAffected > 0, res.Error
}

// ListVisibleToAgent returns the customers an agent's inbox shows: their own
// assignments plus any still-unassigned customers.
func (r *CustomerGormRepository) ListVisibleToAgent(ctx context.Context, agentID string) ([]customer.Customer, error) {
	var models []customerModel
	err := r.db.WithContext(ctx).
		Where("assigned_agent_id = ? OR assigned_agent_id IS NULL", agentID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]customer.Customer, len(models))
	for i, m := range models {
		res[i] = fromCustomerModel(m)
	}
	return res, nil
}
