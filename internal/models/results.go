package models

// OptionResult 单选项统计
type OptionResult struct {
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// ResultSnapshot is derived from a poll and its votes on every read,
// never cached and never persisted.
type ResultSnapshot struct {
	PollId         string         `json:"poll_id"`
	Question       string         `json:"question"`
	QuestionNumber int            `json:"question_number"`
	Status         PollStatus     `json:"status"`
	Options        []OptionResult `json:"options"`
	TotalVotes     int            `json:"total_votes"`
}

// ActivePollState is the resync payload any client can ask for.
type ActivePollState struct {
	Poll             Poll           `json:"poll"`
	Results          ResultSnapshot `json:"results"`
	RemainingSeconds int            `json:"remaining_seconds"`
}
