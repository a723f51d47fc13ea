package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

// IntegrationSource lists the active integrations of a quiz. Config
// contents are not validated here; each adapter fails closed per delivery
// when required keys are missing.
type IntegrationSource interface {
	ListActiveIntegrations(quizID string) ([]*services.Integration, error)
}

// DefaultDeliveryTimeout bounds one outbound call so a hung receiver
// cannot accumulate goroutines forever.
const DefaultDeliveryTimeout = 10 * time.Second

// Dispatcher fans a captured lead out to every active integration of its
// quiz. Deliveries run concurrently and are best effort: failures are
// logged, never retried and never surfaced to the lead-capture path.
type Dispatcher struct {
	source   IntegrationSource
	registry *Registry
	logger   zerolog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(source IntegrationSource, registry *Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		source:   source,
		registry: registry,
		logger:   logger,
		timeout:  DefaultDeliveryTimeout,
	}
}

// LeadCaptured implements services.LeadDispatcher. It schedules the
// dispatch cycle on a detached goroutine and returns immediately; the
// caller's latency never depends on integration count or third-party
// health.
func (d *Dispatcher) LeadCaptured(quiz *services.Quiz, lead *services.Lead) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.recoverPanic("dispatch")
		d.dispatch(quiz, lead)
	}()
}

func (d *Dispatcher) dispatch(quiz *services.Quiz, lead *services.Lead) {
	payload := BuildPayload(quiz, lead)
	integrations, err := d.source.ListActiveIntegrations(quiz.ID)
	if err != nil {
		d.logger.Error().Err(err).Str("quiz_id", quiz.ID).Msg("dispatch: load integrations")
		return
	}

	var wg sync.WaitGroup
	for _, in := range integrations {
		adapter, ok := d.registry.Lookup(in.Type)
		if !ok {
			d.logger.Warn().
				Str("integration_id", in.ID).
				Str("type", in.Type).
				Msg("dispatch: unknown integration type, skipping")
			continue
		}
		wg.Add(1)
		go func(in *services.Integration) {
			defer wg.Done()
			defer d.recoverPanic("delivery")
			d.deliver(adapter, payload, in)
		}(in)
	}
	wg.Wait()
}

func (d *Dispatcher) deliver(adapter Adapter, payload *Payload, in *services.Integration) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	res := adapter.Deliver(ctx, payload, in.Config)
	evt := d.logger.Info()
	if !res.Success {
		evt = d.logger.Warn()
	}
	evt.Str("integration_id", in.ID).
		Str("type", in.Type).
		Str("quiz_id", in.QuizID).
		Bool("success", res.Success).
		Dur("elapsed", time.Since(start)).
		Str("message", res.Message).
		Msg("dispatch: delivery finished")
}

// SendTest delivers a synthetic payload through the integration's adapter
// and, unlike the capture path, blocks and returns the outcome to the
// caller.
func (d *Dispatcher) SendTest(ctx context.Context, in *services.Integration) Result {
	adapter, ok := d.registry.Lookup(in.Type)
	if !ok {
		return Result{Success: false, Message: "unknown integration type: " + in.Type}
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return adapter.Deliver(ctx, TestPayload(), in.Config)
}

// Drain blocks until all in-flight dispatch cycles finish or the timeout
// elapses. Used on shutdown; returns false when deliveries were abandoned.
func (d *Dispatcher) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (d *Dispatcher) recoverPanic(stage string) {
	if r := recover(); r != nil {
		d.logger.Error().Interface("panic", r).Str("stage", stage).Msg("dispatch: recovered")
	}
}
