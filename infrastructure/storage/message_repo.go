package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wadesk/wadesk/domains/message"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageGormRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

func (r *MessageGormRepository) GetByID(ctx context.Context, id string) (message.Message, error) {
	var m messageModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, pkgError.NotFoundError("message not found: " + id)
		}
		return message.Message{}, err
	}
	return fromMessageModel(m), nil
}

func (r *MessageGormRepository) FindByProviderID(ctx context.Context, providerMessageID string) (message.Message, error) {
	var m messageModel
	if err := r.db.WithContext(ctx).First(&m, "provider_message_id = ?", providerMessageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, pkgError.NotFoundError("message not found for provider id: " + providerMessageID)
		}
		return message.Message{}, err
	}
	return fromMessageModel(m), nil
}

// CreateInbound inserts an inbound message, using the unique
// provider_message_id index plus an on-conflict-do-nothing insert as the
// de-duplication mechanism. Check-then-insert is deliberately avoided: the
// conflict clause closes the race window that pattern leaves open under
// concurrent webhook redelivery.
func (r *MessageGormRepository) CreateInbound(ctx context.Context, params message.CreateInboundParams) (message.Message, bool, error) {
	createdAt := params.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	pid := params.ProviderMessageID
	m := messageModel{
		ID:                uuid.NewString(),
		CustomerID:        params.CustomerID,
		SenderID:          nil,
		ReceiverID:        params.ReceiverAgentID,
		Content:           params.Content,
		Direction:         string(message.DirectionInbound),
		Status:            string(message.StatusReceived),
		Provider:          params.Provider,
		ProviderMessageID: &pid,
		CreatedAt:         createdAt,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "provider_message_id"}}, DoNothing: true}).
		Create(&m)
	if res.Error != nil {
		return message.Message{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindByProviderID(ctx, pid)
		if err != nil {
			return message.Message{}, false, err
		}
		return existing, false, nil
	}
	return fromMessageModel(m), true, nil
}

func (r *MessageGormRepository) CreateOutbound(ctx context.Context, params message.CreateOutboundParams) (message.Message, error) {
	sender := params.SenderAgentID
	m := messageModel{
		ID:         uuid.NewString(),
		CustomerID: params.CustomerID,
		SenderID:   &sender,
		ReceiverID: nil,
		Content:    params.Content,
		Direction:  string(message.DirectionOutbound),
		// Optimistically sent: the content is part of the conversation even
		// if the provider call that follows fails.
		Status:    string(message.StatusSent),
		Provider:  params.Provider,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return message.Message{}, err
	}
	return fromMessageModel(m), nil
}

func (r *MessageGormRepository) AttachProviderID(ctx context.Context, messageID, providerMessageID string) error {
	return r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("id = ?", messageID).
		Update("provider_message_id", providerMessageID).Error
}

func (r *MessageGormRepository) UpdateStatus(ctx context.Context, messageID string, status message.Status) error {
	return r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("id = ?", messageID).
		Update("status", string(status)).Error
}

func (r *MessageGormRepository) RecordDeliveryError(ctx context.Context, messageID, errorCode, errorMessage string) error {
	return r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("id = ?", messageID).
		Updates(map[string]any{
			"error_code":    sql.NullString{String: errorCode, Valid: errorCode != ""},
			"error_message": sql.NullString{String: errorMessage, Valid: errorMessage != ""},
		}).Error
}

func (r *MessageGormRepository) ListByCustomer(ctx context.Context, customerID, agentID string) ([]message.Message, error) {
	var models []messageModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Where("sender_id = ? OR receiver_id = ? OR (sender_id IS NULL AND receiver_id IS NULL)", agentID, agentID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]message.Message, len(models))
	for i, m := range models {
		res[i] = fromMessageModel(m)
	}
	return res, nil
}

func (r *MessageGormRepository) LastByCustomer(ctx context.Context, customerID, agentID string) (*message.Message, error) {
	var m messageModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Where("sender_id = ? OR receiver_id = ? OR (sender_id IS NULL AND receiver_id IS NULL)", agentID, agentID).
		Order("created_at DESC").
		Limit(1).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	msg := fromMessageModel(m)
	return &msg, nil
}

func (r *MessageGormRepository) CountUnread(ctx context.Context, customerID, agentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("customer_id = ? AND receiver_id = ?", customerID, agentID).
		Where("status IN ?", []string{string(message.StatusSent), string(message.StatusReceived)}).
		Count(&count).Error
	return count, err
}

func (r *MessageGormRepository) MarkRead(ctx context.Context, messageID string) error {
	return r.UpdateStatus(ctx, messageID, message.StatusRead)
}

func (r *MessageGormRepository) MarkConversationRead(ctx context.Context, customerID, agentID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("customer_id = ? AND receiver_id = ?", customerID, agentID).
		Where("status IN ?", []string{string(message.StatusSent), string(message.StatusReceived)}).
		Update("status", string(message.StatusRead))
	return res.RowsAffected, res.Error
}
