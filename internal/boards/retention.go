package boards

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Retention prunes stale boards from the shared anonymous store on a
// nightly schedule. The per-user scope is never swept: those boards are
// deleted only by their owner.
type Retention struct {
	store  *FileStore
	maxAge time.Duration
	log    *zap.Logger
	cron   *cron.Cron
}

func NewRetention(store *FileStore, maxAge time.Duration, log *zap.Logger) *Retention {
	return &Retention{store: store, maxAge: maxAge, log: log}
}

// Start schedules the sweep nightly at 12:00 AM.
func (r *Retention) Start() error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc("0 0 0 * * *", r.Sweep); err != nil {
		return err
	}
	r.cron = c
	c.Start()
	r.log.Info("board retention sweep scheduled", zap.Duration("max_age", r.maxAge))
	return nil
}

func (r *Retention) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Retention) Sweep() {
	dropped, err := r.store.Prune(time.Now().Add(-r.maxAge))
	if err != nil {
		r.log.Warn("retention sweep failed", zap.Error(err))
		return
	}
	if dropped > 0 {
		r.log.Info("retention sweep pruned boards", zap.Int("dropped", dropped))
	}
}
