// Package audit writes share and access records off the request path.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"statementapi/internal/logging"
	"statementapi/internal/model"
	"statementapi/internal/repository"
)

// DefaultTimeout bounds a single audit write.
const DefaultTimeout = 5 * time.Second

// Recorder performs best-effort audit writes on background goroutines.
// Write failures are logged and never reach the caller.
type Recorder struct {
	shares  repository.ShareLogRepository
	access  repository.AccessLogRepository
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder builds a Recorder. A nil logger discards failure logs.
func NewRecorder(shares repository.ShareLogRepository, access repository.AccessLogRepository, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		shares:  shares,
		access:  access,
		log:     log.With(zap.String(logging.FieldComponent, "audit")),
		timeout: DefaultTimeout,
	}
}

// RecordShare stores rec asynchronously.
func (r *Recorder) RecordShare(rec model.ShareRecord) {
	r.spawn(func(ctx context.Context) {
		if err := r.shares.Create(ctx, &rec); err != nil {
			r.log.Warn("share audit write failed",
				zap.String(logging.FieldDocumentID, rec.DocumentID),
				zap.String(logging.FieldUserID, rec.IssuerID),
				zap.Error(err),
			)
		}
	})
}

// RecordAccess stores rec asynchronously.
func (r *Recorder) RecordAccess(rec model.AccessRecord) {
	r.spawn(func(ctx context.Context) {
		if err := r.access.Create(ctx, &rec); err != nil {
			r.log.Warn("access audit write failed",
				zap.String(logging.FieldDocumentID, rec.DocumentID),
				zap.String(logging.FieldPath, rec.Path),
				zap.String(logging.FieldMode, string(rec.Method)),
				zap.Error(err),
			)
		}
	})
}

// Wait blocks until every pending write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) spawn(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.log.Error("audit writer panicked", zap.Any("panic", p))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		fn(ctx)
	}()
}
