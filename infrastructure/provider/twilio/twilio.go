package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wadesk/wadesk/core/config"
	"github.com/wadesk/wadesk/domains/provider"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"github.com/wadesk/wadesk/pkg/utils"
)

// Adapter talks to the Twilio WhatsApp API: form-encoded sends authenticated
// with account SID + auth token, and form-encoded inbound/status webhooks.
type Adapter struct {
	cfg    config.TwilioConfig
	client *http.Client
}

func NewAdapter(cfg config.TwilioConfig, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Kind() provider.Kind { return provider.KindTwilio }

func (a *Adapter) Configured() bool {
	return a.cfg.AccountSID != "" && a.cfg.AuthToken != "" && a.cfg.WhatsappNumber != ""
}

type apiResponse struct {
	Sid     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (a *Adapter) Send(ctx context.Context, toPhone, content string) (provider.SendResult, error) {
	form := url.Values{}
	form.Set("From", "whatsapp:"+a.cfg.WhatsappNumber)
	form.Set("To", "whatsapp:"+toPhone)
	form.Set("Body", content)
	return a.post(ctx, toPhone, form)
}

// SendTemplate opens a conversation with the configured content template.
// Variables are numbered placeholders ({"1": "Aziz"}) per the Twilio content API.
func (a *Adapter) SendTemplate(ctx context.Context, toPhone string, variables map[string]string) (provider.SendResult, error) {
	if a.cfg.TemplateSID == "" {
		return provider.SendResult{OK: false, ErrorMessage: "twilio template not configured"}, nil
	}
	vars, err := json.Marshal(variables)
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("marshal template variables: %w", err)
	}
	form := url.Values{}
	form.Set("From", "whatsapp:"+a.cfg.WhatsappNumber)
	form.Set("To", "whatsapp:"+toPhone)
	form.Set("ContentSid", a.cfg.TemplateSID)
	form.Set("ContentVariables", string(vars))
	return a.post(ctx, toPhone, form)
}

func (a *Adapter) post(ctx context.Context, toPhone string, form url.Values) (provider.SendResult, error) {
	if !a.Configured() {
		return provider.SendResult{OK: false, ErrorMessage: "twilio not configured"}, nil
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", a.cfg.BaseURL, a.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.cfg.AccountSID, a.cfg.AuthToken)

	resp, err := a.client.Do(req)
	if err != nil {
		// Transport failures are soft: the caller keeps its stored message.
		logrus.WithFields(logrus.Fields{"to": toPhone, "error": err}).Error("Twilio request failed")
		return provider.SendResult{OK: false, ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed apiResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := parsed.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("twilio returned status %d", resp.StatusCode)
		}
		logrus.WithFields(logrus.Fields{
			"to":     toPhone,
			"status": resp.StatusCode,
			"error":  errMsg,
		}).Error("Failed to send WhatsApp message")
		return provider.SendResult{OK: false, ErrorMessage: errMsg}, nil
	}

	if parsed.Status == "queued" {
		// Messages stuck in queue usually mean the WhatsApp sender number is
		// not fully activated yet.
		logrus.WithFields(logrus.Fields{
			"to":          toPhone,
			"message_sid": parsed.Sid,
		}).Warn("WhatsApp message queued - number may not be fully activated")
	}

	logrus.WithFields(logrus.Fields{
		"to":          toPhone,
		"message_sid": parsed.Sid,
		"status":      parsed.Status,
	}).Info("WhatsApp message sent")

	return provider.SendResult{
		OK:                true,
		ProviderMessageID: parsed.Sid,
		ProviderStatus:    parsed.Status,
	}, nil
}

// ParseWebhook normalizes a Twilio webhook body (application/x-www-form-urlencoded).
// Status callbacks carry MessageStatus; inbound messages carry From + Body.
func (a *Adapter) ParseWebhook(raw []byte) ([]provider.Event, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, pkgError.WebhookError("malformed twilio payload: " + err.Error())
	}

	sid := values.Get("MessageSid")
	if status := values.Get("MessageStatus"); status != "" {
		if sid == "" {
			return nil, pkgError.WebhookError("twilio status callback missing MessageSid")
		}
		return []provider.Event{provider.DeliveryStatusEvent{
			ProviderMessageID: sid,
			ProviderStatus:    status,
			ErrorCode:         values.Get("ErrorCode"),
			ErrorMessage:      values.Get("ErrorMessage"),
		}}, nil
	}

	from := utils.CanonicalPhone(values.Get("From"))
	body := values.Get("Body")
	if from == "" || body == "" || sid == "" {
		return nil, pkgError.WebhookError("twilio webhook missing required fields")
	}

	return []provider.Event{provider.InboundMessageEvent{
		ProviderMessageID: sid,
		FromPhone:         from,
		Body:              body,
		ContactName:       values.Get("ProfileName"),
		OccurredAt:        time.Now().UTC(),
	}}, nil
}
