package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

const (
	webhookSecretHeader    = "X-Quizmaker-Token"
	webhookSignatureHeader = "X-Quizmaker-Signature"
)

// WebhookAdapter POSTs the full payload as JSON to a configured URL.
// Config: url (required), secret (optional). When a secret is set it is
// sent both as a plain token header, which existing receivers match on,
// and as an HMAC-SHA256 signature of the body so receivers can verify
// authenticity without comparing the raw secret.
type WebhookAdapter struct {
	client HTTPClient
}

func NewWebhookAdapter(client HTTPClient) *WebhookAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookAdapter{client: client}
}

func (a *WebhookAdapter) Type() string { return services.IntegrationTypeWebhook }

func (a *WebhookAdapter) Deliver(ctx context.Context, p *Payload, config map[string]string) Result {
	url := config["url"]
	if url == "" {
		return Result{Success: false, Message: "webhook config missing url"}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return Result{Success: false, Message: "encode payload: " + err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if secret := config["secret"]; secret != "" {
		req.Header.Set(webhookSecretHeader, secret)
		req.Header.Set(webhookSignatureHeader, "sha256="+signBody(secret, body))
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Success: false, Message: fmt.Sprintf("webhook responded %d: %s", resp.StatusCode, readSnippet(resp.Body))}
	}
	return Result{Success: true}
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
