package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"netportal/internal/repository"
)

// Sweeper closes connection log rows that stayed connected past the maximum
// session age. It only bounds the lifetime of abandoned rows; the login and
// disconnect paths are untouched by it.
type Sweeper struct {
	logs   repository.ConnectionLogRepository
	maxAge time.Duration
	log    *zap.Logger
}

// NewSweeper creates a sweeper over the connection log repository.
func NewSweeper(logs repository.ConnectionLogRepository, maxAge time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{logs: logs, maxAge: maxAge, log: log}
}

// Sweep closes all rows connected since before now minus the max age and
// returns how many were closed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.maxAge)
	return s.logs.CloseStale(ctx, cutoff)
}

// Schedule registers the sweeper on the given cron at the given interval.
func (s *Sweeper) Schedule(c *cron.Cron, interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := c.AddFunc(spec, func() {
		closed, err := s.Sweep(context.Background())
		if err != nil {
			s.log.Error("session sweep failed", zap.Error(err))
			return
		}
		if closed > 0 {
			s.log.Info("closed stale sessions", zap.Int64("count", closed))
		}
	})
	return err
}
