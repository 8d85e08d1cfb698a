package usecase

import (
	"context"

	"github.com/wadesk/wadesk/domains/chat"
	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/domains/message"
)

type chatService struct {
	customers customer.ICustomerRepository
	messages  message.IMessageRepository
}

func NewChatService(customers customer.ICustomerRepository, messages message.IMessageRepository) chat.IChatUsecase {
	return &chatService{customers: customers, messages: messages}
}

func (s *chatService) ListConversations(ctx context.Context, agentID string) ([]chat.Conversation, error) {
	customers, err := s.customers.ListVisibleToAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	conversations := make([]chat.Conversation, 0, len(customers))
	for _, cust := range customers {
		unread, err := s.messages.CountUnread(ctx, cust.ID, agentID)
		if err != nil {
			return nil, err
		}
		last, err := s.messages.LastByCustomer(ctx, cust.ID, agentID)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, chat.Conversation{
			CustomerID:  cust.ID,
			Name:        cust.Name,
			Phone:       cust.Phone,
			UnreadCount: unread,
			LastMessage: last,
		})
	}
	return conversations, nil
}

func (s *chatService) GetConversation(ctx context.Context, customerID, agentID string) (chat.ConversationDetail, error) {
	cust, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return chat.ConversationDetail{}, err
	}
	messages, err := s.messages.ListByCustomer(ctx, customerID, agentID)
	if err != nil {
		return chat.ConversationDetail{}, err
	}
	return chat.ConversationDetail{Customer: cust, Messages: messages}, nil
}
