package chat

import (
	"context"

	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/domains/message"
)

// Conversation is one customer thread as the agent inbox lists it.
type Conversation struct {
	CustomerID  string           `json:"customer_id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	UnreadCount int64            `json:"unread_count"`
	LastMessage *message.Message `json:"last_message"`
}

type ConversationDetail struct {
	Customer customer.Customer `json:"customer"`
	Messages []message.Message `json:"messages"`
}

type IChatUsecase interface {
	ListConversations(ctx context.Context, agentID string) ([]Conversation, error)
	GetConversation(ctx context.Context, customerID, agentID string) (ConversationDetail, error)
}
