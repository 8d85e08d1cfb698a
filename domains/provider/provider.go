package provider

import (
	"context"
	"time"
)

// Kind identifies one of the closed set of upstream provider variants.
type Kind string

const (
	KindTwilio Kind = "twilio"
	KindMeta   Kind = "meta"
)

// SendResult is the outcome of one outbound provider call. Ordinary
// provider-side failures (auth, throttling, invalid number, network timeouts)
// come back as OK=false with ErrorMessage set and a nil error, so callers can
// persist the message regardless of delivery outcome. A non-nil error from
// Send is reserved for adapter misconfiguration.
type SendResult struct {
	OK                bool   `json:"ok"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	ProviderStatus    string `json:"provider_status,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

// Event is the canonical shape a provider webhook payload normalizes into.
// Exactly one of the two concrete types below implements it.
type Event interface {
	event()
}

// InboundMessageEvent is a customer-authored message. FromPhone is already
// canonical (+digits) when the event leaves the adapter.
type InboundMessageEvent struct {
	ProviderMessageID string
	FromPhone         string
	Body              string
	ContactName       string
	OccurredAt        time.Time
}

func (InboundMessageEvent) event() {}

// DeliveryStatusEvent is a carrier delivery-state change for a previously
// sent message, identified by the provider's message id.
type DeliveryStatusEvent struct {
	ProviderMessageID string
	ProviderStatus    string
	ErrorCode         string
	ErrorMessage      string
}

func (DeliveryStatusEvent) event() {}

// Adapter is the capability surface each provider variant implements. The
// variant set is closed and selected by configuration at startup.
type Adapter interface {
	Kind() Kind
	// Configured reports whether credentials were supplied. Unconfigured
	// adapters short-circuit sends without network I/O.
	Configured() bool
	Send(ctx context.Context, toPhone, content string) (SendResult, error)
	// SendTemplate opens a conversation with a pre-approved template, the
	// only way to message a customer outside the 24h session window.
	SendTemplate(ctx context.Context, toPhone string, variables map[string]string) (SendResult, error)
	// ParseWebhook normalizes one raw webhook payload into zero or more
	// canonical events. A payload that cannot be understood at all returns
	// an error; unknown message subtypes become placeholder-bodied events.
	ParseWebhook(raw []byte) ([]Event, error)
}
