package controller

import (
	"fmt"

	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router)
	ExportContracts(ctx *fiber.Ctx) error
}

type exportController struct {
	exportService service.IExportService
}

func NewExportController(exportService service.IExportService) IExportController {
	return &exportController{exportService: exportService}
}

func (c *exportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/export/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/contracts", c.ExportContracts)
}

func (c *exportController) ExportContracts(ctx *fiber.Ctx) error {
	var req dto.ExportContractsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.exportService.ExportContracts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, res.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.FileName))
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	return ctx.Send(res.Data)
}
