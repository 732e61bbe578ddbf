package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// highPendingThreshold flags a backlog in the health report.
const highPendingThreshold = 1000

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	LastEventTime     time.Time `json:"last_event_time"`
	EventsProcessed   uint64    `json:"events_processed"`
	PendingEvents     int64     `json:"pending_events"`
	DatabaseConnected bool      `json:"database_connected"`
	BrokerConnected   *bool     `json:"broker_connected,omitempty"`
	WorkerRunning     bool      `json:"worker_running"`
	Errors            []string  `json:"errors"`
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type PendingCounter interface {
	CountPendingOutbox(ctx context.Context, maxAttempts int32) (int64, error)
}

// BrokerStatus is satisfied by *nats.Conn.
type BrokerStatus interface {
	IsConnected() bool
}

type HealthChecker struct {
	worker    *Worker
	db        Pinger
	pending   PendingCounter
	broker    BrokerStatus
	threshold time.Duration // How long without events before unhealthy
}

func NewHealthChecker(worker *Worker, db Pinger, pending PendingCounter, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		worker:    worker,
		db:        db,
		pending:   pending,
		threshold: threshold,
	}
}

// WithBroker adds a message broker connection to the report.
func (h *HealthChecker) WithBroker(broker BrokerStatus) *HealthChecker {
	h.broker = broker
	return h
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.EventsProcessed, status.LastEventTime = h.worker.Stats()

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.broker != nil {
		connected := h.broker.IsConnected()
		status.BrokerConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "broker disconnected")
		}
	}

	status.WorkerRunning = h.worker.Running()
	if !status.WorkerRunning {
		status.Healthy = false
		status.Errors = append(status.Errors, "outbox worker not running")
	}

	if status.DatabaseConnected {
		pending, err := h.pending.CountPendingOutbox(ctx, h.worker.config.MaxAttempts)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		} else {
			status.PendingEvents = pending
			h.worker.metrics.RecordOutboxLag(ctx, pending)
			if pending > highPendingThreshold {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
			}
		}
	}

	// Only stale when there is a backlog
	if status.PendingEvents > 0 && !status.LastEventTime.IsZero() {
		since := h.worker.clock.Since(status.LastEventTime)
		if since > h.threshold {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("no events processed for %s", since))
		}
	}

	return status
}

// HTTP handler helper
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
