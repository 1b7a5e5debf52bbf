package controller

import (
	"bufio"
	"os"

	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/service"
	internalWS "contract-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	AddContext(ctx *fiber.Ctx) error
	RemoveContext(ctx *fiber.Ctx) error
	ClearContext(ctx *fiber.Ctx) error
	GetState(ctx *fiber.Ctx) error
	SetPanel(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
	hub              *internalWS.Hub
	logger           logger.ILogger
}

func NewAssistantController(assistantService service.IAssistantService, hub *internalWS.Hub, log logger.ILogger) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
		hub:              hub,
		logger:           log,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Get("/ws", c.ServeWs) // Token via query param; upgrade handshake cannot carry headers from browsers
	h.Use(serverutils.JwtMiddleware)
	h.Post("/chat", c.Chat)
	h.Post("/context", c.AddContext)
	h.Delete("/context/:id", c.RemoveContext)
	h.Delete("/context", c.ClearContext)
	h.Get("/state", c.GetState)
	h.Put("/panel", c.SetPanel)
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("user_id").(string)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if !req.Stream {
		res, err := c.assistantService.SendChat(ctx.Context(), clientId, &req)
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Chat reply", res))
	}

	stream, err := c.assistantService.StreamChat(ctx.Context(), clientId, req.Message)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stream.Close()
		buf := make([]byte, 4096)
		for {
			n, readErr := stream.Read(buf)
			if n > 0 {
				if _, writeErr := w.Write(buf[:n]); writeErr != nil {
					return
				}
				if flushErr := w.Flush(); flushErr != nil {
					return
				}
			}
			if readErr != nil {
				return
			}
		}
	}))
	return nil
}

func (c *assistantController) AddContext(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("user_id").(string)

	var req dto.AddContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.AddContext(ctx.Context(), clientId, req.NoticeId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Context updated", res))
}

func (c *assistantController) RemoveContext(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("user_id").(string)
	noticeId := ctx.Params("id")

	res, err := c.assistantService.RemoveContext(ctx.Context(), clientId, noticeId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Context updated", res))
}

func (c *assistantController) ClearContext(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("user_id").(string)

	res, err := c.assistantService.ClearContext(ctx.Context(), clientId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Context cleared", res))
}

func (c *assistantController) GetState(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("user_id").(string)

	res, err := c.assistantService.GetState(ctx.Context(), clientId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Assistant state", res))
}

func (c *assistantController) SetPanel(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("user_id").(string)

	var req dto.PanelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.assistantService.SetPanel(ctx.Context(), clientId, req.IsOpen); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Panel state saved", nil))
}

// ServeWs upgrades the connection for live document-status updates.
func (c *assistantController) ServeWs(ctx *fiber.Ctx) error {
	// Browsers cannot set headers on the upgrade request, so the token
	// rides the query string.
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Missing token"))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.logger.Warn("AssistantController", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}
	clientId, ok := claims["user_id"].(string)
	if !ok || clientId == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Token missing user_id"))
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			internalWS.ServeWs(c.hub, conn, clientId)
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
