package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/repository"
)

// ActivityWorker buffers archive rows and flushes them in batches.
type ActivityWorker interface {
	Enqueue(row model.ArchiveRow)
	Shutdown()
}

type activityWorker struct {
	repo          repository.ActivityRepository
	logger        *zap.Logger
	queue         chan model.ArchiveRow
	batchSize     int
	flushInterval time.Duration
	wg            sync.WaitGroup
}

// NewActivityWorker starts a background worker that flushes queued rows
// when the batch fills or the interval elapses, whichever comes first.
func NewActivityWorker(repo repository.ActivityRepository, logger *zap.Logger, bufferSize, batchSize int, interval time.Duration) *activityWorker {
	worker := &activityWorker{
		repo:          repo,
		logger:        logger,
		queue:         make(chan model.ArchiveRow, bufferSize),
		batchSize:     batchSize,
		flushInterval: interval,
	}
	worker.wg.Add(1)
	go worker.run()
	return worker
}

// Enqueue hands one row to the worker. Blocks when the buffer is full.
func (w *activityWorker) Enqueue(row model.ArchiveRow) {
	w.queue <- row
}

// Shutdown stops intake and blocks until the remaining rows are flushed.
func (w *activityWorker) Shutdown() {
	close(w.queue)
	w.wg.Wait()
	w.logger.Info("activity worker drained")
}

func (w *activityWorker) run() {
	defer w.wg.Done()

	var batch []model.ArchiveRow
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case row, ok := <-w.queue:
			if !ok {
				if len(batch) > 0 {
					w.flush(batch)
				}
				return
			}

			batch = append(batch, row)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = nil
			}
		}
	}
}

func (w *activityWorker) flush(rows []model.ArchiveRow) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.repo.CreateBatch(ctx, rows); err != nil {
		w.logger.Error("activity archive flush failed",
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		return
	}

	w.logger.Debug("activity rows archived", zap.Int("rows", len(rows)))
}
