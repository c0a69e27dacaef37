package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/careloop/healthbuddy/internal/agent"
)

// AssistantHandler exposes the question-answering entry point.
type AssistantHandler struct {
	HB *agent.HealthBuddy
}

func (h *AssistantHandler) Register(g *echo.Group) {
	g.POST("/ask", h.ask)
	g.GET("/status", h.status)
	g.GET("/workflow", h.workflow)
}

type AskRequest struct {
	Question string `json:"question"`
}

func (h *AssistantHandler) ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	result := h.HB.Answer(c.Request().Context(), req.Question)
	return c.JSON(http.StatusOK, result)
}

func (h *AssistantHandler) status(c echo.Context) error {
	ok, msg := h.HB.CredentialsStatus()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"configured": ok,
		"message":    msg,
	})
}

func (h *AssistantHandler) workflow(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"workflow": h.HB.Workflow()})
}
