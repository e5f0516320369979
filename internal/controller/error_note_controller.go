package controller

import (
	"medstudy-be/internal/dto"
	"medstudy-be/internal/pkg/serverutils"
	"medstudy-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IErrorNoteController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	GetByNotebook(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	ToggleResolved(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	PrepareForReview(ctx *fiber.Ctx) error
	RecordReview(ctx *fiber.Ctx) error
}

type errorNoteController struct {
	service service.IErrorNoteService
}

func NewErrorNoteController(service service.IErrorNoteService) IErrorNoteController {
	return &errorNoteController{service: service}
}

func (c *errorNoteController) RegisterRoutes(r fiber.Router) {
	r.Get("/notebook/v1/:id/entries", serverutils.JwtMiddleware, c.GetByNotebook)

	h := r.Group("/error-notes/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("stats", c.Stats)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Patch(":id/resolve", c.ToggleResolved)
	h.Get(":id/review", c.PrepareForReview)
	h.Post(":id/review", c.RecordReview)
}

func (c *errorNoteController) GetAll(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	query, filter, err := parseListing(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.UserContext(), userId, query, filter)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all error notes", res))
}

func (c *errorNoteController) GetByNotebook(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	notebookId, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	query, filter, err := parseListing(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetByNotebook(ctx.UserContext(), userId, notebookId, query, filter)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notebook error notes", res))
}

func (c *errorNoteController) Create(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	var req dto.CreateErrorNoteRequest
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

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create error note", res))
}

func (c *errorNoteController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show error note", res))
}

func (c *errorNoteController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateErrorNoteRequest
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

	return ctx.JSON(serverutils.SuccessResponse("Success update error note", res))
}

func (c *errorNoteController) ToggleResolved(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.ToggleResolved(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle error note", res))
}

func (c *errorNoteController) Delete(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete error note", nil))
}

func (c *errorNoteController) Stats(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	res, err := c.service.Stats(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get error note stats", res))
}

func (c *errorNoteController) PrepareForReview(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.PrepareForReview(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success prepare error note review", res))
}

func (c *errorNoteController) RecordReview(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.RecordReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RecordReview(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record error note review", res))
}

func parseListing(ctx *fiber.Ctx) (*dto.ListQuery, *dto.ErrorNoteFilterQuery, error) {
	var query dto.ListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var filter dto.ErrorNoteFilterQuery
	if err := ctx.QueryParser(&filter); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return nil, nil, err
	}
	if err := serverutils.ValidateRequest(filter); err != nil {
		return nil, nil, err
	}
	return &query, &filter, nil
}
