package store

import (
	"context"
	"errors"

	"livepoll/internal/models"
)

var (
	// ErrNotFound no row matched the lookup key.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate insert violated the (poll_id, student_id) constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is the durable persistence surface the poll engine depends on.
// InsertVote must be atomic with respect to concurrent inserts for the
// same (poll, student) pair: exactly one wins, the rest get ErrDuplicate.
type Store interface {
	InsertPoll(ctx context.Context, poll *models.Poll) error
	UpdatePollStatus(ctx context.Context, id string, status models.PollStatus) error
	FindPoll(ctx context.Context, id string) (*models.Poll, error)
	FindActivePolls(ctx context.Context) ([]models.Poll, error)
	CountPolls(ctx context.Context) (int64, error)

	InsertVote(ctx context.Context, vote *models.Vote) error
	FindVotes(ctx context.Context, pollId string) ([]models.Vote, error)
	FindVote(ctx context.Context, pollId, studentId string) (*models.Vote, error)

	// FindEndedPolls returns ended polls most-recently-created first.
	FindEndedPolls(ctx context.Context) ([]models.Poll, error)
}
