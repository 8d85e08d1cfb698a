package error

import "net/http"

// WebhookError marks an inbound webhook payload that could not be understood.
// Webhook endpoints answer 4xx for these and 200 for everything else, so the
// upstream provider only retries payloads that were actually malformed.
type WebhookError string

func (err WebhookError) Error() string {
	return string(err)
}

func (err WebhookError) ErrCode() string {
	return "WEBHOOK_ERROR"
}

func (err WebhookError) StatusCode() int {
	return http.StatusBadRequest
}
