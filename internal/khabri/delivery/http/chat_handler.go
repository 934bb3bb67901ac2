package http

import (
	"net/http"
	"strings"

	"market-khabri/internal/khabri/dto"
	"market-khabri/internal/khabri/service"
	"market-khabri/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatHandler handles HTTP requests for the chat assistant.
type ChatHandler struct {
	chat   service.ChatService
	logger *logger.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the chat routes to the Echo group.
func (h *ChatHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/chat", h.Chat)
	g.POST("/chat/new", h.NewChat)
}

// Chat godoc
// @Summary Ask the assistant a question
// @Description Either a question answered inside a server-side session, or a full message list answered against every stored analysis
// @Tags chat
// @Accept  json
// @Produce  json
// @Param   query  body    dto.ChatRequest   true    "Question or transcript"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	ctx := c.Request().Context()
	if len(req.Messages) > 0 {
		return c.JSON(http.StatusOK, dto.ChatResponse{Response: h.chat.Converse(ctx, req.Messages)})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "question is required"})
	}
	reply, sessionID := h.chat.Ask(ctx, req.SessionID, req.Question, req.CompanySymbol)
	return c.JSON(http.StatusOK, dto.ChatResponse{Response: reply, SessionID: sessionID})
}

// NewChat godoc
// @Summary Start a new conversation
// @Description Clears the given session, or creates a new one when no id is sent
// @Tags chat
// @Accept  json
// @Produce  json
// @Param   session  body    dto.NewChatRequest   false    "Session to reset"
// @Success 200 {object} dto.NewChatResponse
// @Router /chat/new [post]
func (h *ChatHandler) NewChat(c echo.Context) error {
	var req dto.NewChatRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
		}
	}

	id := h.chat.NewSession(req.SessionID)
	h.logger.Info("Chat session reset", logger.StringField("session_id", id))
	return c.JSON(http.StatusOK, dto.NewChatResponse{Message: "New chat session started", SessionID: id})
}
