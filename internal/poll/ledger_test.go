package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSubmitVoteAccepted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, "Is 2+2=4?", testOptions, 60)

	snap, err := svc.SubmitVote(ctx, poll.Id, "s1", 0)
	if err != nil {
		t.Fatalf("SubmitVote: %v", err)
	}
	if snap.TotalVotes != 1 || snap.Options[0].Votes != 1 {
		t.Errorf("snapshot = %d total, option 0 %d votes; want 1/1", snap.TotalVotes, snap.Options[0].Votes)
	}
	if snap.Options[0].Percentage != 100 {
		t.Errorf("option 0 percentage = %d, want 100", snap.Options[0].Percentage)
	}

	idx, voted, err := svc.StudentVote(ctx, poll.Id, "s1")
	if err != nil || !voted || idx != 0 {
		t.Errorf("StudentVote = (%d, %v, %v), want (0, true, nil)", idx, voted, err)
	}
}

func TestSubmitVoteDuplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, "q", testOptions, 60)

	if _, err := svc.SubmitVote(ctx, poll.Id, "s1", 0); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	// a second attempt, even for a different option, is rejected
	_, err := svc.SubmitVote(ctx, poll.Id, "s1", 1)
	if !errors.Is(err, ErrDuplicateVote) {
		t.Fatalf("second vote error = %v, want ErrDuplicateVote", err)
	}

	snap, _ := svc.Results(ctx, poll.Id)
	if snap.TotalVotes != 1 || snap.Options[1].Votes != 0 {
		t.Errorf("results changed by rejected vote: %+v", snap)
	}
	if idx, _, _ := svc.StudentVote(ctx, poll.Id, "s1"); idx != 0 {
		t.Errorf("recorded option = %d, want the original 0", idx)
	}
}

func TestSubmitVoteFailureKinds(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, "q", testOptions, 60)

	if _, err := svc.SubmitVote(ctx, "missing", "s1", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown poll error = %v, want ErrNotFound", err)
	}
	if _, err := svc.SubmitVote(ctx, poll.Id, "s1", 5); !errors.Is(err, ErrValidation) {
		t.Errorf("out-of-range option error = %v, want ErrValidation", err)
	}
	if _, err := svc.SubmitVote(ctx, poll.Id, "s1", -1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative option error = %v, want ErrValidation", err)
	}
	if _, err := svc.SubmitVote(ctx, poll.Id, "", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("empty student error = %v, want ErrValidation", err)
	}

	// no vote must have been recorded by any of the rejections
	snap, _ := svc.Results(ctx, poll.Id)
	if snap.TotalVotes != 0 {
		t.Errorf("TotalVotes = %d after rejected votes, want 0", snap.TotalVotes)
	}

	if err := svc.EndPoll(ctx, poll.Id); err != nil {
		t.Fatalf("EndPoll: %v", err)
	}
	if _, err := svc.SubmitVote(ctx, poll.Id, "s1", 0); !errors.Is(err, ErrPollClosed) {
		t.Errorf("vote on ended poll error = %v, want ErrPollClosed", err)
	}
}

func TestSubmitVoteDeadlineIndependentOfStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	current := time.Now()
	svc.now = func() time.Time { return current }

	poll, _ := svc.CreatePoll(ctx, "q", testOptions, 1)

	// deadline passed but nothing has flipped the status yet; the vote
	// must still be rejected
	current = current.Add(time.Second)

	_, err := svc.SubmitVote(ctx, poll.Id, "s1", 0)
	if !errors.Is(err, ErrPollClosed) {
		t.Fatalf("vote after deadline error = %v, want ErrPollClosed", err)
	}

	stored, _ := svc.Results(ctx, poll.Id)
	if stored.TotalVotes != 0 {
		t.Errorf("TotalVotes = %d, want 0", stored.TotalVotes)
	}
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, "q", testOptions, 60)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.SubmitVote(ctx, poll.Id, "s1", n%2)
		}(i)
	}
	wg.Wait()

	accepted, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrDuplicateVote):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Errorf("accepted = %d, want exactly 1", accepted)
	}
	if duplicates != attempts-1 {
		t.Errorf("duplicates = %d, want %d", duplicates, attempts-1)
	}

	snap, _ := svc.Results(ctx, poll.Id)
	if snap.TotalVotes != 1 {
		t.Errorf("TotalVotes = %d, want 1", snap.TotalVotes)
	}
}

func TestConcurrentDistinctStudents(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, "q", testOptions, 60)

	const students = 20
	var wg sync.WaitGroup
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.SubmitVote(ctx, poll.Id, string(rune('a'+n)), n%2); err != nil {
				t.Errorf("vote %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	snap, _ := svc.Results(ctx, poll.Id)
	if snap.TotalVotes != students {
		t.Errorf("TotalVotes = %d, want %d", snap.TotalVotes, students)
	}
	if snap.Options[0].Votes+snap.Options[1].Votes != students {
		t.Errorf("option counts do not sum to total: %+v", snap.Options)
	}
}
