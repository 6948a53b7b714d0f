package chatbot

import (
	"log/slog"
	"net/http"

	"github.com/botforge-ai/botforge/internal/auth"
	"github.com/botforge-ai/botforge/internal/dto"
	"github.com/botforge-ai/botforge/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func chatbotToResponse(b *Chatbot) dto.ChatbotResponse {
	return dto.ChatbotResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		Name:           b.Name,
		Description:    b.Description,
		Model:          b.Model,
		SystemPrompt:   b.SystemPrompt,
		WelcomeMessage: b.WelcomeMessage,
		IsActive:       b.IsActive,
		CreatedAt:      b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List godoc
// @Summary      List chatbots
// @Description  Lists all chatbots owned by the authenticated user
// @Tags         chatbots
// @Produce      json
// @Success      200  {object}  dto.ChatbotListResponse
// @Failure      401  {object}  shared.APIError
// @Router       /chatbots [get]
func (h *Handler) List(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	bots, err := h.store.GetByUser(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("failed to list chatbots", "error", err, "user_id", userID)
		return shared.InternalError("list_failed", "failed to list chatbots")
	}

	response := make([]dto.ChatbotResponse, len(bots))
	for i, b := range bots {
		response[i] = chatbotToResponse(b)
	}

	return c.JSON(http.StatusOK, dto.ChatbotListResponse{Chatbots: response})
}

// Create godoc
// @Summary      Create a chatbot
// @Tags         chatbots
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateChatbotRequest  true  "Chatbot definition"
// @Success      201      {object}  dto.ChatbotResponse
// @Failure      400      {object}  shared.APIError
// @Router       /chatbots [post]
func (h *Handler) Create(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.CreateChatbotRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	if req.Name == "" {
		return shared.BadRequest("missing_name", "name is required")
	}

	b := &Chatbot{
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		Model:          req.Model,
		SystemPrompt:   req.SystemPrompt,
		WelcomeMessage: req.WelcomeMessage,
		Settings:       req.Settings,
		IsActive:       true,
	}

	if err := h.store.Create(c.Request().Context(), b); err != nil {
		h.logger.Error("failed to create chatbot", "error", err, "user_id", userID)
		return shared.InternalError("create_failed", "failed to create chatbot")
	}

	return c.JSON(http.StatusCreated, chatbotToResponse(b))
}

// Get godoc
// @Summary      Get a chatbot
// @Tags         chatbots
// @Produce      json
// @Param        id   path      string  true  "Chatbot ID"
// @Success      200  {object}  dto.ChatbotResponse
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	b, err := h.store.GetOwned(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("chatbot_not_found", "chatbot not found")
		}
		h.logger.Error("failed to get chatbot", "error", err, "chatbot_id", c.Param("id"))
		return shared.InternalError("get_failed", "failed to get chatbot")
	}

	return c.JSON(http.StatusOK, chatbotToResponse(b))
}

// Update godoc
// @Summary      Update a chatbot
// @Tags         chatbots
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Chatbot ID"
// @Param        request  body      dto.UpdateChatbotRequest  true  "Fields to update"
// @Success      200      {object}  dto.ChatbotResponse
// @Failure      404      {object}  shared.APIError
// @Router       /chatbots/{id} [put]
func (h *Handler) Update(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	b, err := h.store.GetOwned(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("chatbot_not_found", "chatbot not found")
		}
		return shared.InternalError("get_failed", "failed to get chatbot")
	}

	var req dto.UpdateChatbotRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Model != nil {
		b.Model = *req.Model
	}
	if req.SystemPrompt != nil {
		b.SystemPrompt = *req.SystemPrompt
	}
	if req.WelcomeMessage != nil {
		b.WelcomeMessage = *req.WelcomeMessage
	}
	if req.Settings != nil {
		b.Settings = req.Settings
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := h.store.Update(c.Request().Context(), b); err != nil {
		h.logger.Error("failed to update chatbot", "error", err, "chatbot_id", b.ID)
		return shared.InternalError("update_failed", "failed to update chatbot")
	}

	return c.JSON(http.StatusOK, chatbotToResponse(b))
}

// Delete godoc
// @Summary      Delete a chatbot
// @Tags         chatbots
// @Param        id  path  string  true  "Chatbot ID"
// @Success      204
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id} [delete]
func (h *Handler) Delete(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	if err := h.store.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("chatbot_not_found", "chatbot not found")
		}
		h.logger.Error("failed to delete chatbot", "error", err, "chatbot_id", c.Param("id"))
		return shared.InternalError("delete_failed", "failed to delete chatbot")
	}

	return c.NoContent(http.StatusNoContent)
}
