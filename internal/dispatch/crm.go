package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

// CRMAdapter upserts the lead as a contact in a CRM-style service.
// Config: endpoint and apiKey (both required), note (optional message
// template expanded with the lead-derived {{placeholder}} values).
type CRMAdapter struct {
	client HTTPClient
}

func NewCRMAdapter(client HTTPClient) *CRMAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &CRMAdapter{client: client}
}

func (a *CRMAdapter) Type() string { return services.IntegrationTypeCRM }

// crmContact is the fixed mapping from the canonical payload to the
// contact shape the CRM endpoint expects.
type crmContact struct {
	Name         string            `json:"name,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Note         string            `json:"note,omitempty"`
	CustomFields map[string]string `json:"custom_fields"`
}

func (a *CRMAdapter) Deliver(ctx context.Context, p *Payload, config map[string]string) Result {
	endpoint := config["endpoint"]
	apiKey := config["apiKey"]
	if endpoint == "" || apiKey == "" {
		return Result{Success: false, Message: "crm config missing endpoint or apiKey"}
	}
	contact := crmContact{
		Name:  p.Lead.Name,
		Email: p.Lead.Email,
		Phone: p.Lead.Phone,
		CustomFields: map[string]string{
			"quiz":            p.Quiz.Name,
			"score":           fmt.Sprintf("%d", p.Lead.Score),
			"result_category": p.Lead.ResultCategory,
		},
	}
	if tpl := config["note"]; tpl != "" {
		contact.Note = services.ResolveTemplate(tpl, p.TemplateValues())
	}
	body, err := json.Marshal(contact)
	if err != nil {
		return Result{Success: false, Message: "encode contact: " + err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	resp, err := a.client.Do(req)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Success: false, Message: fmt.Sprintf("crm responded %d: %s", resp.StatusCode, readSnippet(resp.Body))}
	}
	return Result{Success: true}
}

// readSnippet returns up to 1 KiB of a response body for failure messages.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	return string(bytes.TrimSpace(b))
}
