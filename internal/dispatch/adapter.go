package dispatch

import (
	"context"
	"net/http"
)

// Result is the outcome of one delivery attempt. Attempts are stateless:
// a failure is terminal, there is no retry or redelivery state.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HTTPClient is satisfied by *http.Client and by test stubs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Adapter maps the canonical payload to one destination's wire format and
// interprets its response. Deliver must never panic on bad config; a
// missing required key is reported as a failed Result for that delivery
// only.
type Adapter interface {
	Type() string
	Deliver(ctx context.Context, p *Payload, config map[string]string) Result
}

// Registry selects the adapter for an integration's type tag. Unknown tags
// simply miss, which the dispatcher logs and skips instead of failing the
// batch.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Type()] = a
	}
	return r
}

func (r *Registry) Lookup(typ string) (Adapter, bool) {
	a, ok := r.adapters[typ]
	return a, ok
}
