package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/wadesk/wadesk/domains/message"
	"github.com/wadesk/wadesk/domains/provider"
	pkgError "github.com/wadesk/wadesk/pkg/error"
)

// providerStatusMap translates the provider status vocabulary into the
// canonical message statuses. failed/undelivered are intentionally absent:
// they keep the stored status and only record diagnostics, so a failed
// delivery still reads as an authored, sent message in the conversation.
var providerStatusMap = map[string]message.Status{
	"queued":    message.StatusSent,
	"sending":   message.StatusSent,
	"sent":      message.StatusSent,
	"delivered": message.StatusDelivered,
	"read":      message.StatusRead,
}

// StatusReconciler applies delivery-status events to stored messages.
type StatusReconciler struct {
	messages message.IMessageRepository
}

func NewStatusReconciler(messages message.IMessageRepository) *StatusReconciler {
	return &StatusReconciler{messages: messages}
}

// Apply reconciles one status event. Unknown provider message ids and unknown
// status words are logged no-ops: status callbacks race against our own
// bookkeeping and a provider occasionally ships vocabulary we do not know.
// The returned bool reports whether a stored row was updated.
func (r *StatusReconciler) Apply(ctx context.Context, event provider.DeliveryStatusEvent) (bool, error) {
	msg, err := r.messages.FindByProviderID(ctx, event.ProviderMessageID)
	if err != nil {
		// Only an unknown reference is discardable; a store failure must
		// propagate so the caller counts the event as failed, not discarded.
		var notFound pkgError.NotFoundError
		if !errors.As(err, &notFound) {
			return false, err
		}
		logrus.WithFields(logrus.Fields{
			"provider_message_id": event.ProviderMessageID,
			"provider_status":     event.ProviderStatus,
		}).Warn("Status callback for unknown message; discarding")
		return false, nil
	}

	if event.ProviderStatus == "failed" || event.ProviderStatus == "undelivered" {
		logrus.WithFields(logrus.Fields{
			"message_id":          msg.ID,
			"provider_message_id": event.ProviderMessageID,
			"provider_status":     event.ProviderStatus,
			"error_code":          event.ErrorCode,
			"error_message":       event.ErrorMessage,
		}).Error("Message delivery failed")
		if err := r.messages.RecordDeliveryError(ctx, msg.ID, event.ErrorCode, event.ErrorMessage); err != nil {
			return false, err
		}
		return false, nil
	}

	newStatus, ok := providerStatusMap[event.ProviderStatus]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"message_id":      msg.ID,
			"provider_status": event.ProviderStatus,
		}).Warn("Unknown provider status; ignoring")
		return false, nil
	}

	if newStatus == msg.Status {
		return false, nil
	}
	// Callbacks can arrive out of order; never walk the delivery ladder
	// backwards (a late "sent" after "read").
	if message.Regresses(msg.Status, newStatus) {
		logrus.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"current":    msg.Status,
			"incoming":   newStatus,
		}).Debug("Ignoring out-of-order status regression")
		return false, nil
	}

	if err := r.messages.UpdateStatus(ctx, msg.ID, newStatus); err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"old_status": msg.Status,
		"new_status": newStatus,
	}).Info("Message status updated")
	return true, nil
}
