package message

import (
	"context"
	"time"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
	StatusReceived  Status = "received"
)

// MaxContentLength is the WhatsApp text limit, counted in code points.
const MaxContentLength = 1600

// deliveryRank orders the outbound delivery ladder. Statuses outside the
// ladder (pending, received, failed) rank 0 and are never regressed onto.
var deliveryRank = map[Status]int{
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Regresses reports whether moving from to next would walk the delivery ladder
// backwards (a late "sent" callback arriving after "read"). Such transitions
// are ignored by the reconciler.
func Regresses(current, next Status) bool {
	cur, curOK := deliveryRank[current]
	nxt, nxtOK := deliveryRank[next]
	return curOK && nxtOK && nxt < cur
}

// Message is one WhatsApp message in a customer conversation.
// Invariants: inbound messages have a nil SenderID, outbound messages a nil
// ReceiverID; ProviderMessageID is unique when present and is the sole
// de-duplication key for retried webhooks.
type Message struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customer_id"`
	SenderID          *string   `json:"sender_id"`
	ReceiverID        *string   `json:"receiver_id"`
	Content           string    `json:"content"`
	Direction         Direction `json:"direction"`
	Status            Status    `json:"status"`
	Provider          string    `json:"provider"`
	ProviderMessageID *string   `json:"provider_message_id"`
	ErrorCode         string    `json:"error_code,omitempty"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (m Message) IsInbound() bool  { return m.Direction == DirectionInbound }
func (m Message) IsOutbound() bool { return m.Direction == DirectionOutbound }

type CreateInboundParams struct {
	CustomerID        string
	ReceiverAgentID   *string
	Content           string
	Provider          string
	ProviderMessageID string
	OccurredAt        time.Time
}

type CreateOutboundParams struct {
	CustomerID    string
	SenderAgentID string
	Content       string
	Provider      string
}

type IMessageRepository interface {
	GetByID(ctx context.Context, id string) (Message, error)
	FindByProviderID(ctx context.Context, providerMessageID string) (Message, error)
	// CreateInbound is idempotent on ProviderMessageID: replaying the same
	// webhook returns the already stored row with created=false instead of
	// inserting a second one or failing.
	CreateInbound(ctx context.Context, params CreateInboundParams) (msg Message, created bool, err error)
	// CreateOutbound records an agent-authored message with status=sent
	// before any provider call happens, so a provider outage never loses it.
	CreateOutbound(ctx context.Context, params CreateOutboundParams) (Message, error)
	AttachProviderID(ctx context.Context, messageID, providerMessageID string) error
	UpdateStatus(ctx context.Context, messageID string, status Status) error
	// RecordDeliveryError stores provider error diagnostics without touching
	// status, direction or content.
	RecordDeliveryError(ctx context.Context, messageID, errorCode, errorMessage string) error
	ListByCustomer(ctx context.Context, customerID, agentID string) ([]Message, error)
	LastByCustomer(ctx context.Context, customerID, agentID string) (*Message, error)
	CountUnread(ctx context.Context, customerID, agentID string) (int64, error)
	MarkRead(ctx context.Context, messageID string) error
	MarkConversationRead(ctx context.Context, customerID, agentID string) (int64, error)
}

type SendMessageRequest struct {
	CustomerID string `json:"customer_id"`
	AgentID    string `json:"agent_id"`
	Content    string `json:"content"`
}

type SendMessageResponse struct {
	Message Message `json:"message"`
	// Delivered reports whether the provider accepted the message. A false
	// value is a soft failure: the message is stored either way.
	Delivered     bool   `json:"delivered"`
	DeliveryError string `json:"delivery_error,omitempty"`
}

type IMessageUsecase interface {
	Send(ctx context.Context, request SendMessageRequest) (SendMessageResponse, error)
	MarkRead(ctx context.Context, messageID, agentID string) (Message, error)
	MarkConversationRead(ctx context.Context, customerID, agentID string) (int64, error)
}
