package poll

import (
	"testing"

	"livepoll/internal/models"
)

func twoOptionPoll() *models.Poll {
	return &models.Poll{
		Id:       "p1",
		Question: "Is 2+2=4?",
		Options: []models.Option{
			{Text: "4", IsCorrect: true},
			{Text: "5", IsCorrect: false},
		},
		TimeLimit:      60,
		Status:         models.PollStatusActive,
		QuestionNumber: 1,
	}
}

func TestAggregateNoVotes(t *testing.T) {
	snap := Aggregate(twoOptionPoll(), nil)

	if snap.TotalVotes != 0 {
		t.Errorf("TotalVotes = %d, want 0", snap.TotalVotes)
	}
	for i, opt := range snap.Options {
		if opt.Votes != 0 || opt.Percentage != 0 {
			t.Errorf("option %d = %d votes %d%%, want 0 votes 0%%", i, opt.Votes, opt.Percentage)
		}
	}
}

func TestAggregateCountsAndPercentages(t *testing.T) {
	votes := []models.Vote{
		{PollId: "p1", StudentId: "s1", OptionIndex: 0},
		{PollId: "p1", StudentId: "s2", OptionIndex: 0},
		{PollId: "p1", StudentId: "s3", OptionIndex: 1},
	}
	snap := Aggregate(twoOptionPoll(), votes)

	if snap.TotalVotes != 3 {
		t.Fatalf("TotalVotes = %d, want 3", snap.TotalVotes)
	}
	if snap.Options[0].Votes != 2 || snap.Options[1].Votes != 1 {
		t.Errorf("counts = %d/%d, want 2/1", snap.Options[0].Votes, snap.Options[1].Votes)
	}
	// 2/3 rounds up to 67, 1/3 down to 33
	if snap.Options[0].Percentage != 67 {
		t.Errorf("option 0 percentage = %d, want 67", snap.Options[0].Percentage)
	}
	if snap.Options[1].Percentage != 33 {
		t.Errorf("option 1 percentage = %d, want 33", snap.Options[1].Percentage)
	}
}

func TestAggregateHalfRoundsUp(t *testing.T) {
	votes := []models.Vote{
		{StudentId: "s1", OptionIndex: 0},
		{StudentId: "s2", OptionIndex: 1},
	}
	poll := &models.Poll{
		Options: []models.Option{{Text: "a"}, {Text: "b"}},
	}
	snap := Aggregate(poll, votes)
	for i, opt := range snap.Options {
		if opt.Percentage != 50 {
			t.Errorf("option %d percentage = %d, want 50", i, opt.Percentage)
		}
	}
}

func TestAggregateSumInvariant(t *testing.T) {
	votes := []models.Vote{
		{StudentId: "s1", OptionIndex: 0},
		{StudentId: "s2", OptionIndex: 1},
		{StudentId: "s3", OptionIndex: 1},
		{StudentId: "s4", OptionIndex: 1},
		{StudentId: "s5", OptionIndex: 0},
		{StudentId: "s6", OptionIndex: 1},
		{StudentId: "s7", OptionIndex: 1},
	}
	snap := Aggregate(twoOptionPoll(), votes)

	sumVotes, sumPct := 0, 0
	for _, opt := range snap.Options {
		sumVotes += opt.Votes
		sumPct += opt.Percentage
	}
	if sumVotes != snap.TotalVotes {
		t.Errorf("sum of option counts = %d, want %d", sumVotes, snap.TotalVotes)
	}
	if sumPct < 99 || sumPct > 101 {
		t.Errorf("sum of percentages = %d, want within 99..101", sumPct)
	}
}
