package gateway

import (
	"github.com/goccy/go-json"

	"livepoll/internal/models"
)

// Wire events. Inbound intents come from clients, the rest go out
// either privately to the sender or as a fan-out to every connection.
const (
	EventRequestState = "request-state"
	EventCreatePoll   = "create-poll"
	EventSubmitVote   = "submit-vote"

	EventState          = "state"
	EventPollStarted    = "poll-started"
	EventResultsUpdated = "results-updated"
	EventPollEnded      = "poll-ended"
	EventVoteAccepted   = "vote-accepted"
	EventVoteRejected   = "vote-rejected"
	EventError          = "error"
)

// Envelope is the frame shape in both directions: {"event": ..., "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type requestStatePayload struct {
	StudentId string `json:"student_id"`
}

type createPollPayload struct {
	Question  string          `json:"question"`
	Options   []models.Option `json:"options"`
	TimeLimit int             `json:"time_limit"`
}

type submitVotePayload struct {
	PollId      string `json:"poll_id"`
	StudentId   string `json:"student_id"`
	OptionIndex int    `json:"option_index"`
}

type statePayload struct {
	Poll             models.Poll           `json:"poll"`
	Results          models.ResultSnapshot `json:"results"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	HasVoted         bool                  `json:"has_voted"`
	VotedOptionIndex *int                  `json:"voted_option_index"`
}

type resultsPayload struct {
	Results models.ResultSnapshot `json:"results"`
}

type acceptedPayload struct {
	OptionIndex int                   `json:"option_index"`
	Results     models.ResultSnapshot `json:"results"`
}

type rejectedPayload struct {
	Message string `json:"message"`
}
