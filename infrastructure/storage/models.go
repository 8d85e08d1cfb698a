package storage

import (
	"database/sql"
	"time"

	"github.com/wadesk/wadesk/domains/agent"
	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/domains/message"
	"gorm.io/gorm"
)

// --- Persistence Models ---

type agentModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;not null"`
	Role      string    `gorm:"column:role;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (agentModel) TableName() string { return "agents" }

type customerModel struct {
	ID              string    `gorm:"primaryKey;column:id"`
	Phone           string    `gorm:"column:phone;not null;uniqueIndex"`
	Name            string    `gorm:"column:name;not null"`
	AssignedAgentID *string   `gorm:"column:assigned_agent_id;index"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

func (customerModel) TableName() string { return "customers" }

type messageModel struct {
	ID         string  `gorm:"primaryKey;column:id"`
	CustomerID string  `gorm:"column:customer_id;not null;index"`
	SenderID   *string `gorm:"column:sender_id"`
	ReceiverID *string `gorm:"column:receiver_id;index"`
	Content    string  `gorm:"column:content;type:text;not null"`
	Direction  string  `gorm:"column:direction;not null"`
	Status     string  `gorm:"column:status;not null;index"`
	Provider   string  `gorm:"column:provider"`
	// Unique when present; rows without a provider id (outbound sends that
	// have not completed) stay NULL and do not collide.
	ProviderMessageID *string        `gorm:"column:provider_message_id;uniqueIndex"`
	ErrorCode         sql.NullString `gorm:"column:error_code"`
	ErrorMessage      sql.NullString `gorm:"column:error_message"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null;index"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;not null"`
}

func (messageModel) TableName() string { return "messages" }

// Migrate creates or updates the relay schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&agentModel{}, &customerModel{}, &messageModel{})
}

// --- Mapping helpers ---

func fromAgentModel(m agentModel) agent.Agent {
	return agent.Agent{ID: m.ID, Name: m.Name, Role: agent.Role(m.Role)}
}

func fromCustomerModel(m customerModel) customer.Customer {
	return customer.Customer{
		ID:              m.ID,
		Phone:           m.Phone,
		Name:            m.Name,
		AssignedAgentID: m.AssignedAgentID,
		CreatedAt:       m.CreatedAt,
	}
}

func fromMessageModel(m messageModel) message.Message {
	return message.Message{
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		SenderID:          m.SenderID,
		ReceiverID:        m.ReceiverID,
		Content:           m.Content,
		Direction:         message.Direction(m.Direction),
		Status:            message.Status(m.Status),
		Provider:          m.Provider,
		ProviderMessageID: m.ProviderMessageID,
		ErrorCode:         m.ErrorCode.String,
		ErrorMessage:      m.ErrorMessage.String,
		CreatedAt:         m.CreatedAt,
	}
}
