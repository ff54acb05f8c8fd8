package store

import (
	"context"
	"sort"
	"sync"

	"livepoll/internal/models"
)

// Memory keeps everything in process. Used for tests and for running
// without APP_DB; the same insert-if-absent contract as the database
// constraint, just behind a mutex.
type Memory struct {
	mu    sync.RWMutex
	polls map[string]models.Poll
	votes map[string]models.Vote
}

func NewMemory() *Memory {
	return &Memory{
		polls: make(map[string]models.Poll),
		votes: make(map[string]models.Vote),
	}
}

func voteKey(pollId, studentId string) string {
	return pollId + "\x00" + studentId
}

func (m *Memory) InsertPoll(_ context.Context, poll *models.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.polls[poll.Id]; ok {
		return ErrDuplicate
	}
	m.polls[poll.Id] = *poll
	return nil
}

func (m *Memory) UpdatePollStatus(_ context.Context, id string, status models.PollStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok := m.polls[id]
	if !ok {
		return ErrNotFound
	}
	poll.Status = status
	m.polls[id] = poll
	return nil
}

func (m *Memory) FindPoll(_ context.Context, id string) (*models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	poll, ok := m.polls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &poll, nil
}

func (m *Memory) FindActivePolls(_ context.Context) ([]models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active []models.Poll
	for _, poll := range m.polls {
		if poll.Status == models.PollStatusActive {
			active = append(active, poll)
		}
	}
	return active, nil
}

func (m *Memory) CountPolls(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.polls)), nil
}

func (m *Memory) InsertVote(_ context.Context, vote *models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := voteKey(vote.PollId, vote.StudentId)
	if _, ok := m.votes[key]; ok {
		return ErrDuplicate
	}
	m.votes[key] = *vote
	return nil
}

func (m *Memory) FindVotes(_ context.Context, pollId string) ([]models.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var votes []models.Vote
	for _, vote := range m.votes {
		if vote.PollId == pollId {
			votes = append(votes, vote)
		}
	}
	return votes, nil
}

func (m *Memory) FindVote(_ context.Context, pollId, studentId string) (*models.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vote, ok := m.votes[voteKey(pollId, studentId)]
	if !ok {
		return nil, ErrNotFound
	}
	return &vote, nil
}

func (m *Memory) FindEndedPolls(_ context.Context) ([]models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ended []models.Poll
	for _, poll := range m.polls {
		if poll.Status == models.PollStatusEnded {
			ended = append(ended, poll)
		}
	}
	sort.Slice(ended, func(i, j int) bool {
		if ended[i].CreatedAt.Equal(ended[j].CreatedAt) {
			return ended[i].QuestionNumber > ended[j].QuestionNumber
		}
		return ended[i].CreatedAt.After(ended[j].CreatedAt)
	})
	return ended, nil
}
