package usecase

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/wadesk/wadesk/domains/agent"
	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/domains/message"
	"github.com/wadesk/wadesk/domains/provider"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"github.com/wadesk/wadesk/validations"
)

type messageService struct {
	customers  customer.ICustomerRepository
	agents     agent.IAgentRepository
	messages   message.IMessageRepository
	adapter    provider.Adapter
	reconciler *StatusReconciler
}

// NewMessageService builds the outbound sender and read-receipt operations.
// The adapter is the configured active provider; store-then-notify ordering
// means the authored message survives any provider outage.
func NewMessageService(
	customers customer.ICustomerRepository,
	agents agent.IAgentRepository,
	messages message.IMessageRepository,
	adapter provider.Adapter,
	reconciler *StatusReconciler,
) message.IMessageUsecase {
	return &messageService{
		customers:  customers,
		agents:     agents,
		messages:   messages,
		adapter:    adapter,
		reconciler: reconciler,
	}
}

func (s *messageService) Send(ctx context.Context, request message.SendMessageRequest) (message.SendMessageResponse, error) {
	if err := validations.ValidateSendMessage(ctx, request); err != nil {
		return message.SendMessageResponse{}, err
	}

	cust, err := s.customers.GetByID(ctx, request.CustomerID)
	if err != nil {
		return message.SendMessageResponse{}, err
	}
	if _, err := s.agents.GetByID(ctx, request.AgentID); err != nil {
		return message.SendMessageResponse{}, err
	}

	// Step 1: persist. Losing the provider call that follows must never lose
	// the agent's authored message.
	msg, err := s.messages.CreateOutbound(ctx, message.CreateOutboundParams{
		CustomerID:    cust.ID,
		SenderAgentID: request.AgentID,
		Content:       request.Content,
		Provider:      string(s.adapter.Kind()),
	})
	if err != nil {
		return message.SendMessageResponse{}, err
	}

	// Step 2: network send, outside any store transaction.
	result, err := s.adapter.Send(ctx, cust.Phone, request.Content)
	if err != nil {
		// Adapter misconfiguration; the message stays persisted as sent.
		logrus.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"error":      err,
		}).Error("Provider adapter failed fatally")
		_ = s.messages.RecordDeliveryError(ctx, msg.ID, "", err.Error())
		return message.SendMessageResponse{Message: msg, Delivered: false, DeliveryError: err.Error()}, nil
	}
	if !result.OK {
		logrus.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"error":      result.ErrorMessage,
		}).Warn("Failed to send message via provider")
		_ = s.messages.RecordDeliveryError(ctx, msg.ID, "", result.ErrorMessage)
		return message.SendMessageResponse{Message: msg, Delivered: false, DeliveryError: result.ErrorMessage}, nil
	}

	// Step 3: reconcile the immediate response.
	if result.ProviderMessageID != "" {
		if err := s.messages.AttachProviderID(ctx, msg.ID, result.ProviderMessageID); err != nil {
			logrus.WithFields(logrus.Fields{"message_id": msg.ID, "error": err}).Error("Failed to attach provider message id")
		} else {
			pid := result.ProviderMessageID
			msg.ProviderMessageID = &pid
			if result.ProviderStatus != "" {
				_, _ = s.reconciler.Apply(ctx, provider.DeliveryStatusEvent{
					ProviderMessageID: pid,
					ProviderStatus:    result.ProviderStatus,
				})
			}
		}
	}

	updated, err := s.messages.GetByID(ctx, msg.ID)
	if err == nil {
		msg = updated
	}
	return message.SendMessageResponse{Message: msg, Delivered: true}, nil
}

func (s *messageService) MarkRead(ctx context.Context, messageID, agentID string) (message.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if msg.ReceiverID == nil || *msg.ReceiverID != agentID {
		return message.Message{}, pkgError.ForbiddenError("message is not addressed to this agent")
	}
	if err := s.messages.MarkRead(ctx, messageID); err != nil {
		return message.Message{}, err
	}
	msg.Status = message.StatusRead
	return msg, nil
}

func (s *messageService) MarkConversationRead(ctx context.Context, customerID, agentID string) (int64, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return 0, err
	}
	return s.messages.MarkConversationRead(ctx, customerID, agentID)
}
