package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"livepoll/internal/gateway"
	"livepoll/internal/models"
	"livepoll/internal/poll"
)

// PollHandle is the non-realtime companion surface: page reloads and
// plain HTTP clients resync through these instead of the websocket.
type PollHandle struct {
	svc *poll.Service
	gw  *gateway.Gateway
}

func RegisterPolls(r fiber.Router, svc *poll.Service, gw *gateway.Gateway) {
	handler := &PollHandle{svc: svc, gw: gw}

	r.Get("/active", handler.GetActive)
	r.Get("/history", handler.GetHistory)
	r.Post("/", handler.Create)
	r.Get("/vote/:pollId/:studentId", handler.GetStudentVote)
}

// GetActive 获取当前投票 active poll with results and remaining seconds,
// data is null when nothing is running
func (p *PollHandle) GetActive(ctx *fiber.Ctx) error {
	state, err := p.svc.ActivePoll(ctx.Context())
	if err != nil {
		return p.fail(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"code": "200",
		"data": state,
	})
}

// GetHistory 历史记录 every ended poll, newest first
func (p *PollHandle) GetHistory(ctx *fiber.Ctx) error {
	history, err := p.svc.History(ctx.Context())
	if err != nil {
		return p.fail(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"code": "200",
		"data": history,
	})
}

// Create 发起投票
func (p *PollHandle) Create(ctx *fiber.Ctx) error {
	var req struct {
		Question  string          `json:"question"`
		Options   []models.Option `json:"options"`
		TimeLimit int             `json:"time_limit"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    "400",
			"message": "invalid request body",
		})
	}

	created, err := p.svc.CreatePoll(ctx.Context(), req.Question, req.Options, req.TimeLimit)
	if err != nil {
		return p.fail(ctx, err)
	}

	// same fan-out and expiry arming as the websocket intent
	p.gw.AnnouncePoll(ctx.Context(), created)

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code": "201",
		"data": created,
	})
}

// GetStudentVote 查询学生投票情况
func (p *PollHandle) GetStudentVote(ctx *fiber.Ctx) error {
	pollId := ctx.Params("pollId")
	studentId := ctx.Params("studentId")

	optionIndex, voted, err := p.svc.StudentVote(ctx.Context(), pollId, studentId)
	if err != nil {
		return p.fail(ctx, err)
	}

	data := fiber.Map{"voted": voted}
	if voted {
		data["option_index"] = optionIndex
	}
	return ctx.JSON(fiber.Map{
		"code": "200",
		"data": data,
	})
}

func (p *PollHandle) fail(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, poll.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, poll.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, poll.ErrPollClosed), errors.Is(err, poll.ErrDuplicateVote):
		status = fiber.StatusConflict
	default:
		log.Error().Err(err).Str("path", ctx.Path()).Msg("poll api failure")
		message = "internal error"
	}
	return ctx.Status(status).JSON(fiber.Map{
		"code":    strconv.Itoa(status),
		"message": message,
	})
}
