// internal/quiz/reaper.go
package quiz

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

// Reaper periodically closes timed sessions nobody came back to.
type Reaper struct {
	service  *Service
	schedule string
	log      *zap.Logger
	cron     *cron.Cron
}

func NewReaper(service *Service, schedule string, log *zap.Logger) *Reaper {
	return &Reaper{
		service:  service,
		schedule: schedule,
		log:      log,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (r *Reaper) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.sweep); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("session reaper started", zap.String("schedule", r.schedule))
	return nil
}

// Stop waits for a running sweep to finish or ctx to end.
func (r *Reaper) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := r.service.ExpireOverdueSessions(ctx)
	if err != nil {
		r.log.Error("session sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.log.Info("expired overdue sessions", zap.Int("count", n))
	}
}
