package cache

import (
	"context"
	"sync"

	"github.com/mzahid/tartil/internal/constants"
	"github.com/mzahid/tartil/internal/domain"
	"github.com/mzahid/tartil/internal/logger"
)

type mirrorTask struct {
	ownerID string
	rec     domain.ProgressRecord
}

// mirror performs best-effort remote upserts off the caller's path. Each task
// gets exactly one attempt; there is no retry queue. A dropped or failed
// mirror converges the next time the same level is saved.
type mirror struct {
	remote RemoteStore
	log    *logger.Logger

	tasks   chan mirrorTask
	pending sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newMirror(remote RemoteStore, log *logger.Logger) *mirror {
	ctx, cancel := context.WithCancel(context.Background())
	return &mirror{
		remote: remote,
		log:    log.WithComponent("mirror"),
		tasks:  make(chan mirrorTask, constants.MirrorQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (w *mirror) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *mirror) Stop() {
	w.cancel()
	w.wg.Wait()
}

// Enqueue schedules one remote upsert. Never blocks: when the queue is full
// the write is dropped with a warning.
func (w *mirror) Enqueue(ownerID string, rec domain.ProgressRecord) {
	w.pending.Add(1)
	select {
	case w.tasks <- mirrorTask{ownerID: ownerID, rec: rec}:
	default:
		w.pending.Done()
		w.log.Warn("mirror queue full, dropping remote write",
			"owner_id", ownerID, "level", rec.Level)
	}
}

// Flush waits until every enqueued task has been attempted, or ctx expires.
func (w *mirror) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *mirror) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case task := <-w.tasks:
			w.attempt(task)
		}
	}
}

// drain marks any queued-but-unattempted tasks as finished so Flush callers
// are not left hanging after Stop.
func (w *mirror) drain() {
	for {
		select {
		case <-w.tasks:
			w.pending.Done()
		default:
			return
		}
	}
}

func (w *mirror) attempt(task mirrorTask) {
	defer w.pending.Done()

	if err := w.remote.UpsertProgress(w.ctx, task.ownerID, task.rec); err != nil {
		w.log.Warn("remote progress mirror failed",
			"owner_id", task.ownerID, "level", task.rec.Level, "error", err)
		return
	}
	w.log.Debug("mirrored progress to remote",
		"owner_id", task.ownerID, "level", task.rec.Level)
}
