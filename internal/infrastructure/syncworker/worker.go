package syncworker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/usecase"
)

// Worker uploads queued sync events to the remote backend. Delivery is
// best-effort: failed events stay queued and are retried on the next tick,
// so the backend must treat uploads as idempotent. EntityUpdatedAt rides
// along for last-write-wins resolution on the remote side.
type Worker struct {
	syncRepo  usecase.SyncRepository
	uploader  Uploader
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	retention time.Duration
}

// Uploader delivers a single event to the backend.
type Uploader interface {
	Upload(ctx context.Context, event *domain.SyncEvent) error
}

// Config for Worker.
type Config struct {
	SyncRepo  usecase.SyncRepository
	Uploader  Uploader
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics // Optional
	BatchSize int              // Number of events to fetch per batch
	Interval  time.Duration    // Polling interval
	Retention time.Duration    // How long delivered events are kept
}

// NewWorker creates a new Worker.
func NewWorker(cfg Config) *Worker {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Retention == 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}

	return &Worker{
		syncRepo:  cfg.SyncRepo,
		uploader:  cfg.Uploader,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		retention: cfg.Retention,
	}
}

// Start begins the sync worker. It runs continuously until the context is
// cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Msg("sync worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start
	if err := w.processEvents(ctx); err != nil {
		w.logger.Error().Err(err).Msg("error processing sync events on start")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("sync worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processEvents(ctx); err != nil {
				w.logger.Error().Err(err).Msg("error processing sync events")
			}
		}
	}
}

// processEvents fetches and uploads a batch of pending events, then purges
// delivered events past retention.
func (w *Worker) processEvents(ctx context.Context) error {
	events, err := w.syncRepo.GetUnsynced(ctx, w.batchSize)
	if err != nil {
		return err
	}

	if w.metrics != nil {
		w.metrics.SyncBacklog.Set(float64(len(events)))
	}

	if len(events) == 0 {
		return nil
	}

	w.logger.Info().Int("count", len(events)).Msg("uploading sync events")

	for _, event := range events {
		if err := w.uploadEvent(ctx, event); err != nil {
			w.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to upload sync event")
			if w.metrics != nil {
				w.metrics.SyncFailures.WithLabelValues("upload").Inc()
			}
			// Continue processing other events even if one fails
			continue
		}

		if w.metrics != nil {
			w.metrics.SyncEventsDelivered.Inc()
		}

		if err := w.syncRepo.MarkSynced(ctx, event.ID, time.Now()); err != nil {
			w.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark sync event delivered")
		}
	}

	if err := w.syncRepo.DeleteSynced(ctx, time.Now().Add(-w.retention)); err != nil {
		w.logger.Warn().Err(err).Msg("failed to purge delivered sync events")
	}

	return nil
}

func (w *Worker) uploadEvent(ctx context.Context, event *domain.SyncEvent) error {
	w.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Msg("uploading sync event")

	return w.uploader.Upload(ctx, event)
}

// HTTPUploader posts events as JSON to the backend sync endpoint.
type HTTPUploader struct {
	client     *http.Client
	backendURL string
}

// NewHTTPUploader creates a new HTTPUploader.
func NewHTTPUploader(backendURL string, timeout time.Duration) *HTTPUploader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPUploader{
		client:     &http.Client{Timeout: timeout},
		backendURL: backendURL,
	}
}

type uploadPayload struct {
	ID              string         `json:"id"`
	AggregateID     string         `json:"aggregate_id"`
	AggregateType   string         `json:"aggregate_type"`
	EventType       string         `json:"event_type"`
	Payload         map[string]any `json:"payload"`
	EntityUpdatedAt time.Time      `json:"entity_updated_at"`
}

// Upload posts the event to the backend.
func (u *HTTPUploader) Upload(ctx context.Context, event *domain.SyncEvent) error {
	body, err := json.Marshal(uploadPayload{
		ID:              event.ID,
		AggregateID:     event.AggregateID,
		AggregateType:   event.AggregateType,
		EventType:       event.EventType,
		Payload:         event.Payload,
		EntityUpdatedAt: event.EntityUpdatedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.backendURL+"/api/v1/sync/events", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("backend rejected event %s: status %d", event.ID, resp.StatusCode)
	}

	return nil
}
