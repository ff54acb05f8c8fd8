package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	strconv2 "github.com/savsgio/gotils/strconv"

	"livepoll/internal/models"
	"livepoll/internal/poll"
)

const intentTimeout = 10 * time.Second

// Gateway routes inbound client intents to the poll service and fans
// the resulting state changes out through the hub. Failed votes are
// only ever reported to the submitter, never broadcast.
type Gateway struct {
	svc   *poll.Service
	sched *poll.Scheduler
	hub   *Hub
}

func New(svc *poll.Service, sched *poll.Scheduler, hub *Hub) *Gateway {
	return &Gateway{svc: svc, sched: sched, hub: hub}
}

// RegisterRoutes mounts the websocket endpoint on /ws.
func RegisterRoutes(app *fiber.App, g *Gateway) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(g.serve))
}

func (g *Gateway) serve(conn *websocket.Conn) {
	client := &Client{conn: conn, send: make(chan []byte, 64)}
	g.hub.register <- client
	go client.writePump()
	client.readPump(g)
}

func (g *Gateway) dispatch(client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Str("frame", strconv2.B2S(raw)).Msg("dropping malformed frame")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
	defer cancel()

	switch env.Event {
	case EventRequestState:
		g.handleRequestState(ctx, client, env.Data)
	case EventCreatePoll:
		g.handleCreatePoll(ctx, client, env.Data)
	case EventSubmitVote:
		g.handleSubmitVote(ctx, client, env.Data)
	default:
		log.Debug().Str("event", env.Event).Msg("unknown intent")
	}
}

// handleRequestState is the resync path: any client, fresh or
// reconnecting, gets the authoritative state in one private reply.
func (g *Gateway) handleRequestState(ctx context.Context, client *Client, data json.RawMessage) {
	var req requestStatePayload
	_ = json.Unmarshal(data, &req)
	if req.StudentId != "" {
		client.studentId = req.StudentId
	}

	state, err := g.svc.ActivePoll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("request-state failed")
		client.emit(EventError, rejectedPayload{Message: "failed to load poll state"})
		return
	}
	if state == nil {
		client.emit(EventState, nil)
		return
	}

	reply := statePayload{
		Poll:             state.Poll,
		Results:          state.Results,
		RemainingSeconds: state.RemainingSeconds,
	}
	if req.StudentId != "" {
		if idx, voted, err := g.svc.StudentVote(ctx, state.Poll.Id, req.StudentId); err == nil && voted {
			reply.HasVoted = true
			reply.VotedOptionIndex = &idx
		}
	}
	client.emit(EventState, reply)
}

func (g *Gateway) handleCreatePoll(ctx context.Context, client *Client, data json.RawMessage) {
	var req createPollPayload
	if err := json.Unmarshal(data, &req); err != nil {
		client.emit(EventError, rejectedPayload{Message: "malformed create-poll payload"})
		return
	}

	created, err := g.svc.CreatePoll(ctx, req.Question, req.Options, req.TimeLimit)
	if err != nil {
		if errors.Is(err, poll.ErrValidation) {
			client.emit(EventError, rejectedPayload{Message: err.Error()})
		} else {
			log.Error().Err(err).Msg("create-poll failed")
			client.emit(EventError, rejectedPayload{Message: "failed to create poll"})
		}
		return
	}

	g.AnnouncePoll(ctx, created)
}

func (g *Gateway) handleSubmitVote(ctx context.Context, client *Client, data json.RawMessage) {
	var req submitVotePayload
	if err := json.Unmarshal(data, &req); err != nil {
		client.emit(EventVoteRejected, rejectedPayload{Message: "malformed submit-vote payload"})
		return
	}
	if req.StudentId != "" {
		client.studentId = req.StudentId
	} else {
		// fall back to the identifier this connection last presented
		req.StudentId = client.studentId
	}

	snap, err := g.svc.SubmitVote(ctx, req.PollId, req.StudentId, req.OptionIndex)
	if err != nil {
		switch {
		case errors.Is(err, poll.ErrDuplicateVote):
			client.emit(EventVoteRejected, rejectedPayload{Message: "You have already voted"})
		case errors.Is(err, poll.ErrValidation),
			errors.Is(err, poll.ErrNotFound),
			errors.Is(err, poll.ErrPollClosed):
			client.emit(EventVoteRejected, rejectedPayload{Message: err.Error()})
		default:
			log.Error().Err(err).Str("poll_id", req.PollId).Msg("submit-vote failed")
			client.emit(EventVoteRejected, rejectedPayload{Message: "failed to submit vote"})
		}
		return
	}

	client.emit(EventVoteAccepted, acceptedPayload{OptionIndex: req.OptionIndex, Results: *snap})
	g.hub.Emit(EventResultsUpdated, resultsPayload{Results: *snap})
}

// AnnouncePoll broadcasts poll-started to everyone and then (re)arms
// the expiry timer. Shared by the websocket intent and the REST create
// endpoint.
func (g *Gateway) AnnouncePoll(ctx context.Context, created *models.Poll) {
	snap, err := g.svc.Results(ctx, created.Id)
	if err != nil {
		log.Error().Err(err).Str("poll_id", created.Id).Msg("could not compute results for new poll")
		return
	}
	g.hub.Emit(EventPollStarted, models.ActivePollState{
		Poll:             *created,
		Results:          *snap,
		RemainingSeconds: g.svc.Remaining(created),
	})
	g.sched.Arm(created)
}

// AnnounceEnded publishes the final snapshot after the expiry timer
// closes a poll. Wired as the scheduler's OnEnded callback.
func (g *Gateway) AnnounceEnded(snap models.ResultSnapshot) {
	g.hub.Emit(EventPollEnded, resultsPayload{Results: snap})
}
