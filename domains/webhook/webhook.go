package webhook

import (
	"context"

	"github.com/wadesk/wadesk/domains/provider"
)

// Summary counts what one webhook payload produced. Webhook endpoints log it
// and answer 200 even when some events failed, so the upstream provider does
// not enter a retry storm over a partial internal failure.
type Summary struct {
	Stored        int `json:"stored"`
	Duplicates    int `json:"duplicates"`
	StatusApplied int `json:"status_applied"`
	Discarded     int `json:"discarded"`
	Failed        int `json:"failed"`
}

// IWebhookUsecase runs the ingestion pipeline for one provider payload:
// normalize, resolve customer, persist idempotently, reconcile statuses.
type IWebhookUsecase interface {
	Process(ctx context.Context, kind provider.Kind, raw []byte) (Summary, error)
}
