package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Recorder writes pass runs to an optional Repository. Write failures are
// logged and never reach the caller.
type Recorder struct {
	repo   Repository
	logger *zap.Logger
}

// NewRecorder returns a recorder. A nil repo yields a disabled recorder.
func NewRecorder(repo Repository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.repo != nil
}

// Record stores run, assigning an id when it has none. The write outlives
// cancellation of ctx so a pass cut short is still recorded.
func (r *Recorder) Record(ctx context.Context, run *Run) {
	if !r.Enabled() {
		return
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.repo.CreateRun(ctx, run); err != nil {
		r.logger.Warn("failed to record pass",
			zap.String("run_id", run.ID.String()),
			zap.String("kind", string(run.Kind)),
			zap.Error(err))
	}
}

// Recent lists the latest runs, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	if !r.Enabled() {
		return nil, ErrDisabled
	}
	return r.repo.ListRecent(ctx, limit)
}

// Ping reports whether the store is reachable. A disabled recorder is always
// ready.
func (r *Recorder) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	return r.repo.Ping(ctx)
}
