package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"livepoll/internal/models"
)

func TestMemoryPollRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	poll := &models.Poll{Id: "p1", Question: "q", Status: models.PollStatusActive}
	if err := m.InsertPoll(ctx, poll); err != nil {
		t.Fatalf("InsertPoll: %v", err)
	}
	if err := m.InsertPoll(ctx, poll); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second InsertPoll = %v, want ErrDuplicate", err)
	}

	got, err := m.FindPoll(ctx, "p1")
	if err != nil || got.Question != "q" {
		t.Errorf("FindPoll = (%+v, %v)", got, err)
	}
	if _, err := m.FindPoll(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindPoll unknown = %v, want ErrNotFound", err)
	}

	active, _ := m.FindActivePolls(ctx)
	if len(active) != 1 {
		t.Errorf("active polls = %d, want 1", len(active))
	}

	if err := m.UpdatePollStatus(ctx, "p1", models.PollStatusEnded); err != nil {
		t.Fatalf("UpdatePollStatus: %v", err)
	}
	active, _ = m.FindActivePolls(ctx)
	if len(active) != 0 {
		t.Errorf("active polls after end = %d, want 0", len(active))
	}

	count, _ := m.CountPolls(ctx)
	if count != 1 {
		t.Errorf("CountPolls = %d, want 1", count)
	}
}

func TestMemoryVoteUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	vote := &models.Vote{PollId: "p1", StudentId: "s1", OptionIndex: 0}
	if err := m.InsertVote(ctx, vote); err != nil {
		t.Fatalf("InsertVote: %v", err)
	}
	dup := &models.Vote{PollId: "p1", StudentId: "s1", OptionIndex: 1}
	if err := m.InsertVote(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate InsertVote = %v, want ErrDuplicate", err)
	}

	// same student on another poll is a different key
	other := &models.Vote{PollId: "p2", StudentId: "s1", OptionIndex: 1}
	if err := m.InsertVote(ctx, other); err != nil {
		t.Errorf("vote on second poll = %v, want nil", err)
	}

	got, err := m.FindVote(ctx, "p1", "s1")
	if err != nil || got.OptionIndex != 0 {
		t.Errorf("FindVote = (%+v, %v), want original option 0", got, err)
	}
	if _, err := m.FindVote(ctx, "p1", "s2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindVote unknown = %v, want ErrNotFound", err)
	}

	votes, _ := m.FindVotes(ctx, "p1")
	if len(votes) != 1 {
		t.Errorf("FindVotes = %d votes, want 1", len(votes))
	}
}

func TestMemoryConcurrentVoteInserts(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = m.InsertVote(ctx, &models.Vote{PollId: "p1", StudentId: "s1", OptionIndex: n % 2})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else if !errors.Is(err, ErrDuplicate) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Errorf("accepted inserts = %d, want exactly 1", accepted)
	}
}

func TestMemoryEndedPollsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		m.InsertPoll(ctx, &models.Poll{
			Id:             id,
			Status:         models.PollStatusEnded,
			QuestionNumber: i + 1,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
	}
	m.InsertPoll(ctx, &models.Poll{Id: "active", Status: models.PollStatusActive, CreatedAt: base.Add(time.Hour)})

	ended, err := m.FindEndedPolls(ctx)
	if err != nil {
		t.Fatalf("FindEndedPolls: %v", err)
	}
	if len(ended) != 3 {
		t.Fatalf("ended = %d, want 3", len(ended))
	}
	for i, want := range []string{"c", "b", "a"} {
		if ended[i].Id != want {
			t.Errorf("ended[%d] = %s, want %s", i, ended[i].Id, want)
		}
	}
}
