// Package worker implements the resolution pipeline execution loop.
package worker

import (
	"context"
	"os"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/mbellgrove/linkweaver/internal/blob"
	"github.com/mbellgrove/linkweaver/internal/download"
	"github.com/mbellgrove/linkweaver/internal/metrics"
	"github.com/mbellgrove/linkweaver/internal/pipeline"
	"github.com/mbellgrove/linkweaver/internal/publisher"
	"github.com/mbellgrove/linkweaver/internal/queue"
	"github.com/mbellgrove/linkweaver/internal/resource"
	"github.com/mbellgrove/linkweaver/internal/store"
)

// Config controls Worker behavior.
type Config struct {
	Topic string
	// ArchivePrefix namespaces archived payloads in the blob store.
	ArchivePrefix string
}

// Event is published after each finished resolution.
type Event struct {
	RequestID string    `json:"request_id"`
	OriginURL string    `json:"origin_url"`
	FinalURL  string    `json:"final_url"`
	Status    string    `json:"status"`
	Hops      int       `json:"hops"`
	Finished  time.Time `json:"finished_at"`
}

// Worker consumes queued requests and executes the resolution pipeline.
type Worker struct {
	queue     queue.Queue
	pipe      pipeline.Transformer
	resStore  store.ResolutionStore
	publisher publisher.Publisher
	archive   blob.Store
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker. Store, publisher, and archive may be nil to
// disable persistence, events, and payload archiving respectively.
func New(
	q queue.Queue,
	pipe pipeline.Transformer,
	resStore store.ResolutionStore,
	pub publisher.Publisher,
	archive blob.Store,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resStore == nil {
		resStore = store.NoOpStore{}
	}
	return &Worker{
		queue:     q,
		pipe:      pipe,
		resStore:  resStore,
		publisher: pub,
		archive:   archive,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run blocks, consuming requests until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		request, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued request",
			zap.String("request_id", request.ID),
			zap.String("origin_url", request.OriginURL),
		)
		w.process(ctx, request)
	}
}

func (w *Worker) process(ctx context.Context, request queue.Request) {
	done := metrics.ResolutionStarted()
	defer done()

	raw := resource.New(request.OriginURL, request.Origin, request.Label)
	resolved, err := w.pipe.Transform(ctx, raw)
	if err != nil {
		w.logger.Error("pipeline failed",
			zap.String("request_id", request.ID),
			zap.String("origin_url", request.OriginURL),
			zap.Error(err),
		)
		metrics.RecordResolution("pipeline_error")
		return
	}

	record := Record(request.ID, request.OriginURL, resolved, time.Now().UTC())
	metrics.RecordResolution(record.Status)

	if w.archive != nil {
		w.archivePayload(ctx, request.ID, resolved)
	}

	if err := w.resStore.StoreResolution(ctx, record); err != nil {
		w.logger.Error("store resolution failed",
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
	}

	if w.publisher != nil {
		event := Event{
			RequestID: request.ID,
			OriginURL: request.OriginURL,
			FinalURL:  record.FinalURL,
			Status:    record.Status,
			Hops:      record.Hops,
			Finished:  record.ResolvedAt,
		}
		if _, err := w.publisher.Publish(ctx, w.cfg.Topic, event); err != nil {
			w.logger.Error("publish resolution event failed",
				zap.String("request_id", request.ID),
				zap.Error(err),
			)
		}
	}

	w.logger.Info("resolution finished",
		zap.String("request_id", request.ID),
		zap.String("origin_url", request.OriginURL),
		zap.String("final_url", record.FinalURL),
		zap.String("status", record.Status),
		zap.Int("hops", record.Hops),
	)
}

// archivePayload copies a successfully downloaded payload into the blob
// store under the request ID. Archive failures are logged, not fatal:
// the local file remains the source of truth.
func (w *Worker) archivePayload(ctx context.Context, requestID string, r resource.Resource) {
	if !r.HasDownload() || r.Download.Path == "" {
		return
	}
	switch r.Download.Kind {
	case download.KindSuccess, download.KindTypedSuccess:
	default:
		return
	}

	f, err := os.Open(r.Download.Path)
	if err != nil {
		w.logger.Error("open downloaded payload failed",
			zap.String("request_id", requestID),
			zap.String("path", r.Download.Path),
			zap.Error(err),
		)
		return
	}
	defer func() { _ = f.Close() }()

	objectPath := path.Join(w.cfg.ArchivePrefix, requestID+r.Download.Extension)
	uri, err := w.archive.PutObject(ctx, objectPath, r.Download.MIME, f)
	if err != nil {
		w.logger.Error("archive payload failed",
			zap.String("request_id", requestID),
			zap.String("object_path", objectPath),
			zap.Error(err),
		)
		return
	}
	w.logger.Info("payload archived",
		zap.String("request_id", requestID),
		zap.String("uri", uri),
	)
}

// Record summarizes a resolved resource into its persisted row.
func Record(id, originURL string, r resource.Resource, at time.Time) store.ResolutionRecord {
	record := store.ResolutionRecord{
		ID:         id,
		OriginURL:  originURL,
		FinalURL:   r.URI,
		ResolvedAt: at,
		Hops:       len(r.Visits),
	}

	switch {
	case r.IsInvalid():
		record.Status = "invalid"
		if r.Err != nil {
			record.ErrorText = r.Err.Error()
		}
	case r.IsFollowed():
		record.Status = "followed"
	default:
		record.Status = "unresolved"
	}

	if r.HasGovernedContent() {
		record.ContentType = r.ContentType
	} else if r.Terminal != nil {
		record.ContentType = r.Terminal.ContentType
	}
	if r.HasCuratedContent() {
		record.Title = r.Curated.Title
	}

	for _, v := range r.Visits {
		row := store.VisitRow{
			Kind:        string(v.Kind),
			URL:         v.URL,
			StatusCode:  v.StatusCode,
			RedirectURL: v.RedirectURL,
			ContentType: v.ContentType,
		}
		if v.Err != nil {
			row.Error = v.Err.Error()
		}
		record.Visits = append(record.Visits, row)
	}
	return record
}
