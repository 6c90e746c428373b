package controller

import (
	"fmt"
	"io"

	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFileController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Content(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type fileController struct {
	fileService service.IFileService
}

func NewFileController(fileService service.IFileService) IFileController {
	return &fileController{
		fileService: fileService,
	}
}

func (c *fileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/files")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Get(":id/content", c.Content)
	h.Delete(":id", c.Delete)
}

func (c *fileController) Upload(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	res, err := c.fileService.Upload(ctx.UserContext(), serverutils.UserID(ctx), header.Filename, data)
	if err != nil {
		return err
	}

	if res.Duplicate {
		return ctx.JSON(serverutils.SuccessResponse("File already uploaded", res))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("File uploaded", res))
}

func (c *fileController) List(ctx *fiber.Ctx) error {
	res, err := c.fileService.ListDocuments(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list files", res))
}

func (c *fileController) Content(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	content, err := c.fileService.GetContent(ctx.UserContext(), serverutils.UserID(ctx), id)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, content.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", content.Filename))
	return ctx.Send(content.Data)
}

func (c *fileController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	if err := c.fileService.Delete(ctx.UserContext(), serverutils.UserID(ctx), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("File deleted", nil))
}
