package controller

import (
	"medstudy-be/internal/dto"
	"medstudy-be/internal/pkg/serverutils"
	"medstudy-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type notebookController struct {
	service service.INotebookService
}

func NewNotebookController(service service.INotebookService) INotebookController {
	return &notebookController{service: service}
}

func (c *notebookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notebook/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/stats", c.Stats)
}

func (c *notebookController) GetAll(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	var query dto.ListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.UserContext(), userId, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all notebook", res))
}

func (c *notebookController) Create(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	var req dto.CreateNotebookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create notebook", res))
}

func (c *notebookController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show notebook", res))
}

func (c *notebookController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateNotebookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update notebook", res))
}

func (c *notebookController) Delete(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete notebook", nil))
}

func (c *notebookController) Stats(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Stats(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notebook stats", res))
}
