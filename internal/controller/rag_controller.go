package controller

import (
	"errors"
	"io"
	"strconv"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

func init() {
	serverutils.RegisterStatusMapper(func(err error) (int, bool) {
		switch {
		case errors.Is(err, service.ErrQuestionNotFound), errors.Is(err, service.ErrFileNotFound):
			return fiber.StatusNotFound, true
		case errors.Is(err, service.ErrUnsupportedFileType), errors.Is(err, service.ErrEmptyFile):
			return fiber.StatusBadRequest, true
		}
		return 0, false
	})
}

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	AskVoice(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
	DeleteQuestion(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type ragController struct {
	ragService service.IRagService
}

func NewRagController(ragService service.IRagService) IRagController {
	return &ragController{
		ragService: ragService,
	}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag")
	h.Use(serverutils.JwtMiddleware)
	h.Post("ask", c.Ask)
	h.Post("ask-voice", c.AskVoice)
	h.Get("history", c.History)
	h.Get("session/:id", c.Session)
	h.Delete("question/:id", c.DeleteQuestion)
	h.Get("stats", c.Stats)
}

func (c *ragController) Ask(ctx *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ragService.ProcessQuestion(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Question answered", res))
}

func (c *ragController) AskVoice(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("audio_file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio_file is required")
	}

	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sessionId *string
	if s := ctx.FormValue("session_id"); s != "" {
		sessionId = &s
	}

	res, err := c.ragService.ProcessAudioQuestion(ctx.UserContext(), serverutils.UserID(ctx), audio, header.Filename, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Question answered", res))
}

func (c *ragController) History(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 0)

	res, err := c.ragService.GetQuestionHistory(ctx.UserContext(), serverutils.UserID(ctx), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *ragController) Session(ctx *fiber.Ctx) error {
	res, err := c.ragService.GetSessionHistory(ctx.UserContext(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *ragController) DeleteQuestion(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	if err := c.ragService.DeleteQuestion(ctx.UserContext(), serverutils.UserID(ctx), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Question deleted", nil))
}

func (c *ragController) Stats(ctx *fiber.Ctx) error {
	res, err := c.ragService.GetUserStats(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}

func parseID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
