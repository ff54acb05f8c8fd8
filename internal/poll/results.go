package poll

import (
	"math"

	"livepoll/internal/models"
)

// Aggregate derives a ResultSnapshot from a poll and its votes. Pure:
// no counters are maintained anywhere else, so the snapshot can never
// drift from the vote relation.
func Aggregate(poll *models.Poll, votes []models.Vote) models.ResultSnapshot {
	counts := make([]int, len(poll.Options))
	total := 0
	for _, vote := range votes {
		if vote.OptionIndex < 0 || vote.OptionIndex >= len(counts) {
			continue
		}
		counts[vote.OptionIndex]++
		total++
	}

	options := make([]models.OptionResult, len(poll.Options))
	for i, opt := range poll.Options {
		pct := 0
		if total > 0 {
			// round half up
			pct = int(math.Round(float64(counts[i]) / float64(total) * 100))
		}
		options[i] = models.OptionResult{
			Text:       opt.Text,
			IsCorrect:  opt.IsCorrect,
			Votes:      counts[i],
			Percentage: pct,
		}
	}

	return models.ResultSnapshot{
		PollId:         poll.Id,
		Question:       poll.Question,
		QuestionNumber: poll.QuestionNumber,
		Status:         poll.Status,
		Options:        options,
		TotalVotes:     total,
	}
}
