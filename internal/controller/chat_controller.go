package controller

import (
	"rag-api-explorer-be/internal/dto"
	"rag-api-explorer-be/internal/pkg/serverutils"
	"rag-api-explorer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetContext(ctx *fiber.Ctx) error
	ClearContext(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("message", c.SendMessage)
	h.Get("context/:userId", c.GetContext)
	h.Delete("context/:userId", c.ClearContext)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process message", res))
}

func (c *chatController) GetContext(ctx *fiber.Ctx) error {
	res, err := c.service.GetContext(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get context", res))
}

func (c *chatController) ClearContext(ctx *fiber.Ctx) error {
	res, err := c.service.ClearContext(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear context", res))
}
