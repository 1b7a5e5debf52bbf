package controller

import (
	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	ProxyDownload(ctx *fiber.Ctx) error
	Summarize(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{documentService: documentService}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/proxy-download", c.ProxyDownload)
	h.Post("/summarize", c.Summarize)
}

func (c *documentController) ProxyDownload(ctx *fiber.Ctx) error {
	url := ctx.Query("url")
	noticeId := ctx.Query("noticeId")
	if url == "" || noticeId == "" {
		return serverutils.NewValidationError("url and noticeId query params are required")
	}

	doc, err := c.documentService.ProxyDownload(ctx.Context(), noticeId, url)
	if err != nil {
		return err
	}

	if doc.ContentType != "" {
		ctx.Set(fiber.HeaderContentType, doc.ContentType)
	}
	if doc.Disposition != "" {
		ctx.Set(fiber.HeaderContentDisposition, doc.Disposition)
	}
	return ctx.SendStream(doc.Body)
}

func (c *documentController) Summarize(ctx *fiber.Ctx) error {
	var req dto.SummarizeDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	summary, err := c.documentService.Summarize(ctx.Context(), req.Content, req.ContentType)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document summarized", dto.SummarizeDocumentResponse{Summary: summary}))
}
