package offline

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Target is whatever the scheduled jobs run against, normally the Controller's active worker.
type Target interface {
	Sync(ctx context.Context, tag string) error
}

// Scheduler fires the cleanup and background sync tags on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	target Target
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(cfg config.OfflineConfig, target Target) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		target: target,
		ctx:    ctx,
		cancel: cancel,
	}
	jobs := map[string]string{
		TagCacheCleanup:   cfg.GetCleanupSchedule(),
		TagBackgroundSync: cfg.GetSyncSchedule(),
	}
	for tag, spec := range jobs {
		if _, err := s.cron.AddFunc(spec, s.job(tag)); err != nil {
			cancel()
			return nil, errors.Wrapf(err, "schedule %s %q", tag, spec)
		}
	}
	return s, nil
}

func (s *Scheduler) job(tag string) func() {
	return func() {
		if err := s.target.Sync(s.ctx, tag); err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("offline: scheduled sync failed")
			return
		}
		log.Debug().Str("tag", tag).Msg("offline: scheduled sync done")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("kv", fmt.Sprint(keysAndValues...)).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Err(err).Str("kv", fmt.Sprint(keysAndValues...)).Msg("cron: " + msg)
}
