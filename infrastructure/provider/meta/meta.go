package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wadesk/wadesk/core/config"
	"github.com/wadesk/wadesk/domains/provider"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"github.com/wadesk/wadesk/pkg/utils"
)

// Adapter talks to the Meta WhatsApp Cloud API: JSON sends with bearer-token
// auth and the batched entry/changes webhook payload.
type Adapter struct {
	cfg    config.MetaConfig
	client *http.Client
}

func NewAdapter(cfg config.MetaConfig, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Kind() provider.Kind { return provider.KindMeta }

func (a *Adapter) Configured() bool {
	return a.cfg.PhoneNumberID != "" && a.cfg.AccessToken != ""
}

// VerifyToken returns the configured webhook verification secret.
func (a *Adapter) VerifyToken() string { return a.cfg.VerifyToken }

func (a *Adapter) Send(ctx context.Context, toPhone, content string) (provider.SendResult, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                strings.TrimPrefix(toPhone, "+"),
		"type":              "text",
		"text": map[string]any{
			"preview_url": false,
			"body":        content,
		},
	}
	return a.post(ctx, toPhone, payload)
}

func (a *Adapter) SendTemplate(ctx context.Context, toPhone string, variables map[string]string) (provider.SendResult, error) {
	template := map[string]any{
		"name":     variables["template_name"],
		"language": map[string]any{"code": languageOrDefault(variables["language_code"])},
	}
	if params := bodyParameters(variables); len(params) > 0 {
		template["components"] = []map[string]any{{
			"type":       "body",
			"parameters": params,
		}}
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                strings.TrimPrefix(toPhone, "+"),
		"type":              "template",
		"template":          template,
	}
	return a.post(ctx, toPhone, payload)
}

func languageOrDefault(code string) string {
	if code == "" {
		return "en_US"
	}
	return code
}

// bodyParameters converts the numbered template variables ({"1": "Aziz"})
// into positional body parameters, skipping the reserved keys.
func bodyParameters(variables map[string]string) []map[string]any {
	var params []map[string]any
	for i := 1; ; i++ {
		v, ok := variables[strconv.Itoa(i)]
		if !ok {
			break
		}
		params = append(params, map[string]any{"type": "text", "text": v})
	}
	return params
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (a *Adapter) post(ctx context.Context, toPhone string, payload map[string]any) (provider.SendResult, error) {
	if !a.Configured() {
		return provider.SendResult{OK: false, ErrorMessage: "meta whatsapp not configured"}, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("marshal meta payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", a.cfg.BaseURL, a.cfg.APIVersion, a.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("build meta request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{"to": toPhone, "error": err}).Error("Meta WhatsApp request failed")
		return provider.SendResult{OK: false, ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed sendResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := parsed.Error.Message
		if errMsg == "" {
			errMsg = string(raw)
		}
		logrus.WithFields(logrus.Fields{
			"to":     toPhone,
			"status": resp.StatusCode,
			"error":  errMsg,
		}).Error("Meta WhatsApp send failed")
		return provider.SendResult{OK: false, ErrorMessage: errMsg}, nil
	}

	var messageID string
	if len(parsed.Messages) > 0 {
		messageID = parsed.Messages[0].ID
	}
	logrus.WithFields(logrus.Fields{
		"to":         toPhone,
		"message_id": messageID,
	}).Info("Meta WhatsApp message sent")

	// The Cloud API does not return a delivery status in the send response;
	// "sent" is confirmed, later states arrive via the statuses webhook.
	return provider.SendResult{
		OK:                true,
		ProviderMessageID: messageID,
		ProviderStatus:    "sent",
	}, nil
}

// --- Webhook payload shapes ---

type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string      `json:"field"`
			Value changeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type changeValue struct {
	Contacts []struct {
		WaID    string `json:"wa_id"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	} `json:"contacts"`
	Messages []struct {
		From      string `json:"from"`
		ID        string `json:"id"`
		Type      string `json:"type"`
		Timestamp string `json:"timestamp"`
		Text      struct {
			Body string `json:"body"`
		} `json:"text"`
	} `json:"messages"`
	Statuses []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Errors []struct {
			Code  int    `json:"code"`
			Title string `json:"title"`
		} `json:"errors"`
	} `json:"statuses"`
}

// ParseWebhook normalizes one Cloud API payload. A single payload batches any
// number of message and status changes, so the result can hold zero, one, or
// many events. Non-text message subtypes (image, location, ...) keep their
// slot in the thread with a placeholder body instead of being dropped.
func (a *Adapter) ParseWebhook(raw []byte) ([]provider.Event, error) {
	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgError.WebhookError("malformed meta payload: " + err.Error())
	}
	if payload.Object != "whatsapp_business_account" {
		return nil, pkgError.WebhookError("unexpected meta webhook object: " + payload.Object)
	}

	var events []provider.Event
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			value := change.Value

			for _, msg := range value.Messages {
				if msg.ID == "" || msg.From == "" {
					logrus.Warn("Meta message change missing id or sender; skipping")
					continue
				}
				body := msg.Text.Body
				if msg.Type != "text" || body == "" {
					body = "[" + titleCase(msg.Type) + " Message]"
				}
				contactName := ""
				for _, contact := range value.Contacts {
					if contact.WaID == msg.From {
						contactName = contact.Profile.Name
						break
					}
				}
				events = append(events, provider.InboundMessageEvent{
					ProviderMessageID: msg.ID,
					FromPhone:         utils.CanonicalPhone(msg.From),
					Body:              body,
					ContactName:       contactName,
					OccurredAt:        parseTimestamp(msg.Timestamp),
				})
			}

			for _, status := range value.Statuses {
				if status.ID == "" || status.Status == "" {
					continue
				}
				event := provider.DeliveryStatusEvent{
					ProviderMessageID: status.ID,
					ProviderStatus:    status.Status,
				}
				if len(status.Errors) > 0 {
					event.ErrorCode = strconv.Itoa(status.Errors[0].Code)
					event.ErrorMessage = status.Errors[0].Title
				}
				events = append(events, event)
			}
		}
	}
	return events, nil
}

func parseTimestamp(ts string) time.Time {
	if unix, err := strconv.ParseInt(ts, 10, 64); err == nil && unix > 0 {
		return time.Unix(unix, 0).UTC()
	}
	return time.Now().UTC()
}

func titleCase(s string) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
