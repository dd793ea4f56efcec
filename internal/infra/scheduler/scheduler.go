package scheduler

import (
	"context"
	"time"

	"avatar_update_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds one pipeline invocation; every network call inside the
// pipeline already carries its own 5s timeout, so a cycle finishing within a
// minute is a safe assumption.
const jobTimeout = 1 * time.Minute

// UpdateScheduler fires the update pipeline on a cron spec for deployments
// that run the process as a daemon instead of under an external scheduler.
type UpdateScheduler struct {
	cronEngine *cron.Cron
	service    app.UpdateService
	log        *logrus.Logger
	cronSpec   string
}

func NewUpdateScheduler(service app.UpdateService, log *logrus.Logger, cronSpec string) *UpdateScheduler {
	return &UpdateScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Schedule hours are local hours
		service:    service,
		log:        log,
		cronSpec:   cronSpec,
	}
}

// Start registers the update job and starts the cron engine. A failed cycle is
// logged and the daemon keeps running; the next tick retries fresh.
func (s *UpdateScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.log.Info("Cron job triggered for profile update")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if fail := s.service.RunCycle(ctx, time.Now()); fail != nil {
			s.log.Errorf("Update cycle aborted (%s): %v", fail.Class, fail.Err)
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.log.Infof("Update scheduler started with cron spec %q", s.cronSpec)
	return nil
}

func (s *UpdateScheduler) Stop() {
	s.log.Info("Stopping update scheduler...")
	ctx := s.cronEngine.Stop() // Waits for a running job to finish
	<-ctx.Done()
	s.log.Info("Update scheduler stopped")
}
