package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"livepoll/internal/models"
	"livepoll/pkg/async"
)

const fireTimeout = 10 * time.Second

// Scheduler holds the single pending expiry timer, matching the
// single-active-poll invariant. State is transient: after a restart
// the lazy expiry check in Service.ActivePoll reconciles on the next
// read.
type Scheduler struct {
	svc *Service

	// OnEnded receives the final snapshot when a timer closes the poll
	// it was armed for. Set once during wiring, before the first Arm.
	OnEnded func(models.ResultSnapshot)

	mu    sync.Mutex
	timer *time.Timer
}

func NewScheduler(svc *Service) *Scheduler {
	return &Scheduler{svc: svc}
}

// Arm schedules expiry for a freshly created poll, replacing whatever
// timer was pending for the poll it superseded.
func (s *Scheduler) Arm(poll *models.Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	id := poll.Id
	s.timer = time.AfterFunc(time.Duration(poll.TimeLimit)*time.Second, func() {
		async.Guard(func() { s.fire(id) })
	})
}

// Stop cancels the pending timer, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire closes the poll the timer was armed for, but only if it is
// still active. A stale timer outliving its poll is a safe no-op: a
// superseding create already flipped the status, and EndIfCurrent
// reports that as nil. Reading through ActivePoll would be wrong here,
// since its lazy-expiry branch ends the poll itself and would hide the
// transition from this callback.
func (s *Scheduler) fire(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	snap, err := s.svc.EndIfCurrent(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("poll_id", id).Msg("expiry timer could not end poll")
		return
	}
	if snap == nil {
		// superseded or already closed
		return
	}

	log.Info().Str("poll_id", id).Int("total_votes", snap.TotalVotes).Msg("poll expired")
	if s.OnEnded != nil {
		s.OnEnded(*snap)
	}
}
