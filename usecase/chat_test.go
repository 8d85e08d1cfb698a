package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/domains/message"
)

func TestChat_ListConversations(t *testing.T) {
	env := newTestEnv(t)
	service := NewChatService(env.customers, env.messages)
	ctx := context.Background()

	ag := env.seedAgent(t, "Alice")
	other := env.seedAgent(t, "Bob")

	mine, _, err := env.customers.GetOrCreate(ctx, customer.Customer{Phone: "+15550001111", Name: "Mine", AssignedAgentID: &ag.ID})
	if err != nil {
		t.Fatalf("GetOrCreate() error: %v", err)
	}
	if _, _, err := env.customers.GetOrCreate(ctx, customer.Customer{Phone: "+15550002222", Name: "Theirs", AssignedAgentID: &other.ID}); err != nil {
		t.Fatalf("GetOrCreate() error: %v", err)
	}

	for i, pid := range []string{"wamid.1", "wamid.2"} {
		if _, _, err := env.messages.CreateInbound(ctx, message.CreateInboundParams{
			CustomerID:        mine.ID,
			ReceiverAgentID:   &ag.ID,
			Content:           "msg " + pid,
			Provider:          "meta",
			ProviderMessageID: pid,
			OccurredAt:        time.Now().UTC().Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("CreateInbound() error: %v", err)
		}
	}

	conversations, err := service.ListConversations(ctx, ag.ID)
	if err != nil {
		t.Fatalf("ListConversations() error: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("ListConversations() returned %d threads, want only the agent's own", len(conversations))
	}
	conv := conversations[0]
	if conv.CustomerID != mine.ID || conv.UnreadCount != 2 {
		t.Fatalf("conversation = %+v, want 2 unread for %q", conv, mine.ID)
	}
	if conv.LastMessage == nil || *conv.LastMessage.ProviderMessageID != "wamid.2" {
		t.Fatalf("last message = %+v, want newest", conv.LastMessage)
	}
}

func TestChat_GetConversation(t *testing.T) {
	env := newTestEnv(t)
	service := NewChatService(env.customers, env.messages)
	ctx := context.Background()

	ag := env.seedAgent(t, "Alice")
	cust, _, err := env.customers.GetOrCreate(ctx, customer.Customer{Phone: "+15550001111", Name: "Aziz", AssignedAgentID: &ag.ID})
	if err != nil {
		t.Fatalf("GetOrCreate() error: %v", err)
	}

	if _, _, err := env.messages.CreateInbound(ctx, message.CreateInboundParams{
		CustomerID:        cust.ID,
		ReceiverAgentID:   &ag.ID,
		Content:           "Hi",
		Provider:          "meta",
		ProviderMessageID: "wamid.1",
	}); err != nil {
		t.Fatalf("CreateInbound() error: %v", err)
	}
	if _, err := env.messages.CreateOutbound(ctx, message.CreateOutboundParams{
		CustomerID:    cust.ID,
		SenderAgentID: ag.ID,
		Content:       "Hello!",
		Provider:      "meta",
	}); err != nil {
		t.Fatalf("CreateOutbound() error: %v", err)
	}

	detail, err := service.GetConversation(ctx, cust.ID, ag.ID)
	if err != nil {
		t.Fatalf("GetConversation() error: %v", err)
	}
	if detail.Customer.ID != cust.ID {
		t.Fatalf("customer = %q, want %q", detail.Customer.ID, cust.ID)
	}
	if len(detail.Messages) != 2 {
		t.Fatalf("messages = %d, want the full thread", len(detail.Messages))
	}

	if _, err := service.GetConversation(ctx, "nope", ag.ID); err == nil {
		t.Fatal("GetConversation() with unknown customer must fail")
	}
}
