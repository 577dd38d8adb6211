// Package telemetry is a mono middleware that times the relay's internal
// request-reply services and event consumers.
package telemetry

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// HandlerStats holds the counters of one service or event consumer.
type HandlerStats struct {
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	Calls          int64   `json:"calls"`
	Errors         int64   `json:"errors"`
	TotalLatencyMS float64 `json:"total_latency_ms"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
}

type handlerCounter struct {
	kind    string
	calls   int64
	errors  int64
	latency time.Duration
}

// Handler kinds.
const (
	KindService = "service"
	KindEvent   = "event"
)

// Middleware wraps service and event handlers to collect call metrics.
// It must be registered before the modules it observes.
type Middleware struct {
	calls  atomic.Int64
	errors atomic.Int64
	mu     sync.RWMutex
	stats  map[string]*handlerCounter
	logger types.Logger
	now    func() time.Time
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Middleware)(nil)
	_ mono.MiddlewareModule      = (*Middleware)(nil)
	_ mono.HealthCheckableModule = (*Middleware)(nil)
)

// New creates a new telemetry middleware.
func New(logger types.Logger) *Middleware {
	return &Middleware{
		stats:  make(map[string]*handlerCounter),
		logger: logger,
		now:    time.Now,
	}
}

// Name returns the middleware name.
func (m *Middleware) Name() string {
	return "telemetry"
}

// Start starts the middleware.
func (m *Middleware) Start(_ context.Context) error {
	m.logger.Info("Telemetry middleware started")
	return nil
}

// Stop logs the final totals.
func (m *Middleware) Stop(_ context.Context) error {
	m.logger.Info("Telemetry middleware stopped",
		"calls", m.calls.Load(),
		"errors", m.errors.Load())
	return nil
}

// Health returns the health status.
func (m *Middleware) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"calls":  m.calls.Load(),
			"errors": m.errors.Load(),
		},
	}
}

// OnModuleLifecycle logs module start and stop failures.
func (m *Middleware) OnModuleLifecycle(
	_ context.Context,
	event types.ModuleLifecycleEvent,
) types.ModuleLifecycleEvent {
	switch event.Type {
	case types.ModuleStartedEvent:
		m.logger.Debug("Module started",
			"module", event.ModuleName,
			"startup_ms", event.Duration.Milliseconds())
	case types.ModuleStoppedEvent:
		if event.Error != nil {
			m.logger.Warn("Module stopped with error",
				"module", event.ModuleName,
				"error", event.Error)
		}
	}
	return event
}

// OnServiceRegistration wraps request-reply handlers.
func (m *Middleware) OnServiceRegistration(
	_ context.Context,
	reg types.ServiceRegistration,
) types.ServiceRegistration {
	if reg.Type != types.ServiceTypeRequestReply || reg.RequestHandler == nil {
		return reg
	}
	reg.RequestHandler = m.wrapRequestReplyHandler(reg.RequestHandler, reg.Name)
	m.logger.Debug("Observing service", "service", reg.Name)
	return reg
}

// OnConfigurationChange passes through configuration changes unchanged.
func (m *Middleware) OnConfigurationChange(
	_ context.Context,
	event types.ConfigurationEvent,
) types.ConfigurationEvent {
	return event
}

// OnOutgoingMessage passes through outgoing messages unchanged.
func (m *Middleware) OnOutgoingMessage(
	octx types.OutgoingMessageContext,
) types.OutgoingMessageContext {
	return octx
}

// OnEventConsumerRegistration wraps event consumer handlers.
func (m *Middleware) OnEventConsumerRegistration(
	_ context.Context,
	entry types.EventConsumerEntry,
) types.EventConsumerEntry {
	if entry.Handler != nil {
		entry.Handler = m.wrapEventConsumerHandler(entry.Handler, entry.EventDef.Name)
	}
	return entry
}

// OnEventStreamConsumerRegistration passes through event stream consumer registrations unchanged.
func (m *Middleware) OnEventStreamConsumerRegistration(
	_ context.Context,
	entry types.EventStreamConsumerEntry,
) types.EventStreamConsumerEntry {
	return entry
}

func (m *Middleware) wrapRequestReplyHandler(
	original types.RequestReplyHandler,
	serviceName string,
) types.RequestReplyHandler {
	return func(ctx context.Context, req *types.Msg) ([]byte, error) {
		start := m.now()
		resp, err := original(ctx, req)
		m.record(serviceName, KindService, m.now().Sub(start), err)
		return resp, err
	}
}

func (m *Middleware) wrapEventConsumerHandler(
	original types.EventConsumerHandler,
	eventName string,
) types.EventConsumerHandler {
	return func(ctx context.Context, msg *types.Msg) error {
		start := m.now()
		err := original(ctx, msg)
		m.record(eventName, KindEvent, m.now().Sub(start), err)
		return err
	}
}

func (m *Middleware) record(name, kind string, latency time.Duration, err error) {
	m.calls.Add(1)
	if err != nil {
		m.errors.Add(1)
		m.logger.Warn("Handler failed", "name", name, "kind", kind, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	counter, ok := m.stats[name]
	if !ok {
		counter = &handlerCounter{kind: kind}
		m.stats[name] = counter
	}
	counter.calls++
	counter.latency += latency
	if err != nil {
		counter.errors++
	}
}

// Stats returns per-handler counters sorted by name.
func (m *Middleware) Stats() []HandlerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]HandlerStats, 0, len(m.stats))
	for name, counter := range m.stats {
		s := HandlerStats{
			Name:           name,
			Kind:           counter.kind,
			Calls:          counter.calls,
			Errors:         counter.errors,
			TotalLatencyMS: float64(counter.latency) / float64(time.Millisecond),
		}
		if s.Calls > 0 {
			s.AvgLatencyMS = s.TotalLatencyMS / float64(s.Calls)
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
