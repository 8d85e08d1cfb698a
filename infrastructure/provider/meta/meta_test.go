package meta

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wadesk/wadesk/core/config"
	"github.com/wadesk/wadesk/domains/provider"
)

func testConfig(baseURL string) config.MetaConfig {
	return config.MetaConfig{
		PhoneNumberID: "10001",
		AccessToken:   "EAAG-token",
		APIVersion:    "v21.0",
		VerifyToken:   "verify-secret",
		BaseURL:       baseURL,
	}
}

func TestSend_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.XYZ"}]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(testConfig(server.URL), server.Client())
	result, err := adapter.Send(context.Background(), "+15550001111", "Hello")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if !result.OK || result.ProviderMessageID != "wamid.XYZ" || result.ProviderStatus != "sent" {
		t.Fatalf("Send() = %+v", result)
	}
	if gotPath != "/v21.0/10001/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer EAAG-token" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotBody["to"] != "15550001111" {
		t.Fatalf("to = %v, want + stripped", gotBody["to"])
	}
	if gotBody["type"] != "text" {
		t.Fatalf("type = %v", gotBody["type"])
	}
}

func TestSend_APIErrorIsSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"(#131030) Recipient phone number not in allowed list","code":131030}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(testConfig(server.URL), server.Client())
	result, err := adapter.Send(context.Background(), "+15550001111", "Hello")
	if err != nil {
		t.Fatalf("provider-side failure must not return an error, got: %v", err)
	}
	if result.OK {
		t.Fatal("Send() expected OK=false")
	}
	if result.ErrorMessage != "(#131030) Recipient phone number not in allowed list" {
		t.Fatalf("ErrorMessage = %q", result.ErrorMessage)
	}
}

func TestSend_UnconfiguredShortCircuits(t *testing.T) {
	adapter := NewAdapter(config.MetaConfig{BaseURL: "http://unused"}, nil)
	result, err := adapter.Send(context.Background(), "+15550001111", "Hello")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if result.OK || result.ErrorMessage != "meta whatsapp not configured" {
		t.Fatalf("Send() = %+v, want configuration short-circuit", result)
	}
}

func TestSendTemplate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.TPL"}]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(testConfig(server.URL), server.Client())
	result, err := adapter.SendTemplate(context.Background(), "+15550001111", map[string]string{
		"template_name": "welcome",
		"language_code": "en_US",
		"1":             "Aziz",
	})
	if err != nil {
		t.Fatalf("SendTemplate() error: %v", err)
	}
	if !result.OK || result.ProviderMessageID != "wamid.TPL" {
		t.Fatalf("SendTemplate() = %+v", result)
	}
	if gotBody["type"] != "template" {
		t.Fatalf("type = %v", gotBody["type"])
	}
	tpl, _ := gotBody["template"].(map[string]any)
	if tpl["name"] != "welcome" {
		t.Fatalf("template name = %v", tpl["name"])
	}
	if _, hasComponents := tpl["components"]; !hasComponents {
		t.Fatal("template components missing for numbered variables")
	}
}

const batchedPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "123",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "contacts": [{"wa_id": "15550001111", "profile": {"name": "Aziz"}}],
        "messages": [
          {"from": "15550001111", "id": "wamid.A", "timestamp": "1700000000", "type": "text", "text": {"body": "Hi"}},
          {"from": "15550001111", "id": "wamid.B", "timestamp": "1700000060", "type": "image"}
        ],
        "statuses": [
          {"id": "wamid.OUT", "status": "delivered", "recipient_id": "15550001111"}
        ]
      }
    }]
  }]
}`

func TestParseWebhook_BatchedPayload(t *testing.T) {
	adapter := NewAdapter(testConfig("http://unused"), nil)

	events, err := adapter.ParseWebhook([]byte(batchedPayload))
	if err != nil {
		t.Fatalf("ParseWebhook() error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ParseWebhook() returned %d events, want 3", len(events))
	}

	first, ok := events[0].(provider.InboundMessageEvent)
	if !ok {
		t.Fatalf("events[0] type = %T", events[0])
	}
	if first.FromPhone != "+15550001111" {
		t.Fatalf("FromPhone = %q, want canonical form", first.FromPhone)
	}
	if first.ContactName != "Aziz" {
		t.Fatalf("ContactName = %q, want profile name from contacts", first.ContactName)
	}
	if !first.OccurredAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("OccurredAt = %v", first.OccurredAt)
	}

	second := events[1].(provider.InboundMessageEvent)
	if second.Body != "[Image Message]" {
		t.Fatalf("non-text body = %q, want placeholder", second.Body)
	}

	status, ok := events[2].(provider.DeliveryStatusEvent)
	if !ok {
		t.Fatalf("events[2] type = %T", events[2])
	}
	if status.ProviderMessageID != "wamid.OUT" || status.ProviderStatus != "delivered" {
		t.Fatalf("status event = %+v", status)
	}
}

func TestParseWebhook_StatusErrors(t *testing.T) {
	adapter := NewAdapter(testConfig("http://unused"), nil)

	payload := `{
	  "object": "whatsapp_business_account",
	  "entry": [{"changes": [{"field": "messages", "value": {
	    "statuses": [{"id": "wamid.OUT", "status": "failed",
	      "errors": [{"code": 131026, "title": "Message undeliverable"}]}]
	  }}]}]
	}`

	events, err := adapter.ParseWebhook([]byte(payload))
	if err != nil {
		t.Fatalf("ParseWebhook() error: %v", err)
	}
	status := events[0].(provider.DeliveryStatusEvent)
	if status.ErrorCode != "131026" || status.ErrorMessage != "Message undeliverable" {
		t.Fatalf("diagnostics not carried: %+v", status)
	}
}

func TestParseWebhook_IgnoresOtherFields(t *testing.T) {
	adapter := NewAdapter(testConfig("http://unused"), nil)

	payload := `{"object": "whatsapp_business_account",
	  "entry": [{"changes": [{"field": "account_update", "value": {}}]}]}`

	events, err := adapter.ParseWebhook([]byte(payload))
	if err != nil {
		t.Fatalf("ParseWebhook() error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("ParseWebhook() returned %d events, want 0", len(events))
	}
}

func TestParseWebhook_WrongObject(t *testing.T) {
	adapter := NewAdapter(testConfig("http://unused"), nil)

	if _, err := adapter.ParseWebhook([]byte(`{"object": "page"}`)); err == nil {
		t.Fatal("ParseWebhook() expected error for non-whatsapp object")
	}
}

func TestParseWebhook_MalformedJSON(t *testing.T) {
	adapter := NewAdapter(testConfig("http://unused"), nil)

	if _, err := adapter.ParseWebhook([]byte(`{not json`)); err == nil {
		t.Fatal("ParseWebhook() expected error for malformed JSON")
	}
}
