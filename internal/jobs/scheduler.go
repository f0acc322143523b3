package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"authgate/internal/repository"
)

// Scheduler garbage-collects expired refresh sessions. Expiry is enforced
// on every refresh read, so this purge only keeps the table from growing.
type Scheduler struct {
	cron     *cron.Cron
	sessions *repository.SessionRepository
	log      zerolog.Logger
}

func NewScheduler(sessions *repository.SessionRepository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * * *", s.purgeExpired); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for any running purge to finish, up to a short timeout.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired sessions failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("expired refresh sessions removed")
	}
}
