package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wadesk/wadesk/domains/customer"
	"github.com/wadesk/wadesk/domains/message"
	"github.com/wadesk/wadesk/domains/provider"
	"github.com/wadesk/wadesk/domains/webhook"
	pkgError "github.com/wadesk/wadesk/pkg/error"
)

type webhookService struct {
	adapters   map[provider.Kind]provider.Adapter
	resolver   customer.ICustomerResolver
	messages   message.IMessageRepository
	reconciler *StatusReconciler
}

// NewWebhookService wires the ingestion pipeline for the closed set of
// provider variants.
func NewWebhookService(
	adapters map[provider.Kind]provider.Adapter,
	resolver customer.ICustomerResolver,
	messages message.IMessageRepository,
	reconciler *StatusReconciler,
) webhook.IWebhookUsecase {
	return &webhookService{
		adapters:   adapters,
		resolver:   resolver,
		messages:   messages,
		reconciler: reconciler,
	}
}

// Process normalizes one raw webhook payload and applies every event it
// yields. A malformed payload returns an error (the endpoint answers 4xx);
// per-event failures after that are logged and counted but never bubble up,
// so a partial failure does not trigger an upstream retry storm.
func (s *webhookService) Process(ctx context.Context, kind provider.Kind, raw []byte) (webhook.Summary, error) {
	adapter, ok := s.adapters[kind]
	if !ok {
		return webhook.Summary{}, pkgError.WebhookError(fmt.Sprintf("no adapter registered for provider %q", kind))
	}

	events, err := adapter.ParseWebhook(raw)
	if err != nil {
		return webhook.Summary{}, err
	}

	var summary webhook.Summary
	for _, event := range events {
		switch ev := event.(type) {
		case provider.InboundMessageEvent:
			created, err := s.processInbound(ctx, kind, ev)
			switch {
			case err != nil:
				summary.Failed++
				logrus.WithFields(logrus.Fields{
					"provider":            kind,
					"provider_message_id": ev.ProviderMessageID,
					"error":               err,
				}).Error("Failed to store inbound message")
			case created:
				summary.Stored++
			default:
				summary.Duplicates++
				logrus.WithFields(logrus.Fields{
					"provider":            kind,
					"provider_message_id": ev.ProviderMessageID,
				}).Info("Duplicate inbound message ignored")
			}
		case provider.DeliveryStatusEvent:
			updated, err := s.reconciler.Apply(ctx, ev)
			switch {
			case err != nil:
				summary.Failed++
				logrus.WithFields(logrus.Fields{
					"provider":            kind,
					"provider_message_id": ev.ProviderMessageID,
					"error":               err,
				}).Error("Failed to apply status event")
			case updated:
				summary.StatusApplied++
			default:
				summary.Discarded++
			}
		}
	}
	return summary, nil
}

func (s *webhookService) processInbound(ctx context.Context, kind provider.Kind, event provider.InboundMessageEvent) (bool, error) {
	if event.FromPhone == "" || event.ProviderMessageID == "" {
		return false, pkgError.WebhookError("inbound event missing phone or provider message id")
	}

	cust, err := s.resolver.Resolve(ctx, event.FromPhone, event.ContactName)
	if err != nil {
		return false, err
	}

	msg, created, err := s.messages.CreateInbound(ctx, message.CreateInboundParams{
		CustomerID:        cust.ID,
		ReceiverAgentID:   cust.AssignedAgentID,
		Content:           event.Body,
		Provider:          string(kind),
		ProviderMessageID: event.ProviderMessageID,
		OccurredAt:        event.OccurredAt,
	})
	if err != nil {
		return false, err
	}
	if created {
		logrus.WithFields(logrus.Fields{
			"message_id":  msg.ID,
			"customer_id": cust.ID,
			"receiver_id": derefOrEmpty(cust.AssignedAgentID),
			"provider":    kind,
		}).Info("Incoming WhatsApp message stored")
	}
	return created, nil
}
