package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"livepoll/internal/models"
	"livepoll/internal/store"
)

// DefaultTimeLimit is applied when a create request leaves the time
// limit unset.
const DefaultTimeLimit = 60

// Service owns the single "current active poll" pointer. Every status
// transition (create, end, lazy expiry) and every vote runs under one
// mutex, so two polls can never be active at once and a vote can never
// be accepted against a poll a concurrent create is ending. The store's
// atomic insert-if-absent backs the duplicate-vote constraint on top.
type Service struct {
	store store.Store

	mu  sync.Mutex
	now func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// CreatePoll ends whatever poll is currently active and starts a new
// one. The question number counts every poll ever created, 1-based.
func (s *Service) CreatePoll(ctx context.Context, question string, options []models.Option, timeLimit int) (*models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrValidation)
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("%w: a poll needs at least two options", ErrValidation)
	}
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return nil, fmt.Errorf("%w: option %d has no text", ErrValidation, i)
		}
	}
	if timeLimit < 0 {
		return nil, fmt.Errorf("%w: time limit must not be negative", ErrValidation)
	}
	if timeLimit == 0 {
		timeLimit = DefaultTimeLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.store.FindActivePolls(ctx)
	if err != nil {
		return nil, err
	}
	for _, prev := range active {
		if err := s.store.UpdatePollStatus(ctx, prev.Id, models.PollStatusEnded); err != nil {
			return nil, err
		}
	}

	count, err := s.store.CountPolls(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	poll := &models.Poll{
		Id:             uuid.NewString(),
		Question:       question,
		Options:        options,
		TimeLimit:      timeLimit,
		Status:         models.PollStatusActive,
		StartedAt:      now,
		QuestionNumber: int(count) + 1,
		CreatedAt:      now,
	}
	if err := s.store.InsertPoll(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

// ActivePoll returns the current poll with its live results and
// remaining seconds, or nil when none is running. Acts as the lazy
// expiry safety net: a poll past its deadline is transitioned to ended
// right here, which is idempotent and safe to race with the scheduler.
func (s *Service) ActivePoll(ctx context.Context) (*models.ActivePollState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.store.FindActivePolls(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	poll := active[0]
	remaining := s.Remaining(&poll)
	if remaining <= 0 {
		if err := s.store.UpdatePollStatus(ctx, poll.Id, models.PollStatusEnded); err != nil {
			return nil, err
		}
		return nil, nil
	}

	snap, err := s.snapshot(ctx, &poll)
	if err != nil {
		return nil, err
	}
	return &models.ActivePollState{
		Poll:             poll,
		Results:          snap,
		RemainingSeconds: remaining,
	}, nil
}

// EndPoll transitions the named poll to ended if it is still active.
// Ending an already-ended or unknown poll is a no-op, never an error.
// Callers that need the closing snapshot use EndIfCurrent instead.
func (s *Service) EndPoll(ctx context.Context, pollId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, err := s.store.FindPoll(ctx, pollId)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if poll.Status != models.PollStatusActive {
		return nil
	}
	return s.store.UpdatePollStatus(ctx, pollId, models.PollStatusEnded)
}

// EndIfCurrent closes the named poll if it is still active and returns
// the final snapshot, or nil when the poll was already ended,
// superseded, or never existed. Unlike ActivePoll it never walks the
// lazy-expiry branch, so the expiry timer can use it to observe the
// transition it performs itself.
func (s *Service) EndIfCurrent(ctx context.Context, pollId string) (*models.ResultSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, err := s.store.FindPoll(ctx, pollId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if poll.Status != models.PollStatusActive {
		return nil, nil
	}
	if err := s.store.UpdatePollStatus(ctx, pollId, models.PollStatusEnded); err != nil {
		return nil, err
	}
	poll.Status = models.PollStatusEnded

	snap, err := s.snapshot(ctx, poll)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SubmitVote validates and records one student's vote, returning the
// freshly recomputed snapshot. Precondition order and failure kinds
// are part of the contract; the deadline check is deliberately
// independent of lazy expiry so a vote cannot sneak in between "time
// is up" and the status flip. The whole check-then-insert runs under
// the lifecycle mutex: once the status check passes, no create or end
// can slip in before the vote lands.
func (s *Service) SubmitVote(ctx context.Context, pollId, studentId string, optionIndex int) (*models.ResultSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, err := s.store.FindPoll(ctx, pollId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pollId)
	}
	if err != nil {
		return nil, err
	}
	if poll.Status != models.PollStatusActive {
		return nil, fmt.Errorf("%w: poll is not active", ErrPollClosed)
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return nil, fmt.Errorf("%w: option index %d out of range", ErrValidation, optionIndex)
	}
	if s.elapsed(poll) >= poll.TimeLimit {
		return nil, fmt.Errorf("%w: poll time has expired", ErrPollClosed)
	}
	if strings.TrimSpace(studentId) == "" {
		return nil, fmt.Errorf("%w: student id must not be empty", ErrValidation)
	}

	vote := &models.Vote{
		PollId:      pollId,
		StudentId:   studentId,
		OptionIndex: optionIndex,
		SubmittedAt: s.now(),
	}
	if err := s.store.InsertVote(ctx, vote); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: student %s on poll %s", ErrDuplicateVote, studentId, pollId)
		}
		return nil, err
	}

	snap, err := s.snapshot(ctx, poll)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// StudentVote reports whether the student voted on the poll and for
// which option.
func (s *Service) StudentVote(ctx context.Context, pollId, studentId string) (int, bool, error) {
	vote, err := s.store.FindVote(ctx, pollId, studentId)
	if errors.Is(err, store.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return vote.OptionIndex, true, nil
}

// Results recomputes the snapshot for any poll, active or ended.
func (s *Service) Results(ctx context.Context, pollId string) (*models.ResultSnapshot, error) {
	poll, err := s.store.FindPoll(ctx, pollId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pollId)
	}
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, poll)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// History returns every ended poll, newest first, paired with its
// snapshot.
func (s *Service) History(ctx context.Context) ([]models.ResultSnapshot, error) {
	polls, err := s.store.FindEndedPolls(ctx)
	if err != nil {
		return nil, err
	}
	history := make([]models.ResultSnapshot, 0, len(polls))
	for i := range polls {
		snap, err := s.snapshot(ctx, &polls[i])
		if err != nil {
			return nil, err
		}
		history = append(history, snap)
	}
	return history, nil
}

// Remaining is the server-authoritative countdown value; clients must
// treat their local timers as advisory.
func (s *Service) Remaining(poll *models.Poll) int {
	remaining := poll.TimeLimit - s.elapsed(poll)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Service) elapsed(poll *models.Poll) int {
	return int(s.now().Sub(poll.StartedAt) / time.Second)
}

func (s *Service) snapshot(ctx context.Context, poll *models.Poll) (models.ResultSnapshot, error) {
	votes, err := s.store.FindVotes(ctx, poll.Id)
	if err != nil {
		return models.ResultSnapshot{}, err
	}
	return Aggregate(poll, votes), nil
}
