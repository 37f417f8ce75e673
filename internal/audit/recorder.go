package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cradle/pkg/requestcontext"

	"cradle/internal/platform/metrics"
)

// Sink receives recorded entries for fan-out beyond the primary store,
// such as a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
}

// Recorder writes audit entries. Every entry produces a structured log
// line and a best-effort store append: a failing append is logged and
// counted but never fails the business operation that triggered it.
type Recorder struct {
	store   Store
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithSink adds a fan-out sink invoked after each successful append.
func WithSink(sink Sink) RecorderOption {
	return func(r *Recorder) { r.sink = sink }
}

// WithMetrics wires append outcome counters.
func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store Store, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record fills in the entry's ID, timestamp, and request context, then
// persists it. Callers treat auditing as fire-and-forget.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}
	if entry.ActorIP == "" {
		entry.ActorIP = requestcontext.ClientIP(ctx)
	}
	if entry.ActorType == "" && entry.ActorID != nil {
		entry.ActorType = ActorTypeUser
	}

	r.logger.InfoContext(ctx, "audit",
		"action", entry.Action,
		"tenant_id", entry.TenantID,
		"actor_email", entry.ActorEmail,
		"resource_type", entry.ResourceType,
		"resource_id", entry.ResourceID,
		"success", entry.Success,
		"request_id", entry.RequestID,
	)

	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist audit entry",
			"error", err,
			"action", entry.Action,
			"tenant_id", entry.TenantID,
		)
		r.countAppend("error")
		return
	}
	r.countAppend("ok")

	if r.sink != nil {
		if err := r.sink.Publish(ctx, entry); err != nil {
			r.logger.WarnContext(ctx, "failed to publish audit entry",
				"error", err,
				"action", entry.Action,
			)
		}
	}
}

// List exposes the store's tenant-scoped read for the audit endpoint.
func (r *Recorder) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]Entry, error) {
	return r.store.List(ctx, tenantID, offset, limit)
}

func (r *Recorder) countAppend(outcome string) {
	if r.metrics != nil {
		r.metrics.AuditAppends.WithLabelValues(outcome).Inc()
	}
}
