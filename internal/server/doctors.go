package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careloop/healthbuddy/internal/agent"
)

// DoctorsHandler exposes the doctor directory.
type DoctorsHandler struct {
	HB *agent.HealthBuddy
}

func (h *DoctorsHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.add)
}

type AddDoctorRequest struct {
	Name             string `json:"name"`
	Specialization   string `json:"specialization"`
	AvailableTimings string `json:"available_timings"`
	Location         string `json:"location"`
	Contact          string `json:"contact"`
}

// list returns the roster; with ?q= it runs a keyword search instead.
func (h *DoctorsHandler) list(c echo.Context) error {
	if q := c.QueryParam("q"); q != "" {
		matches, err := h.HB.SearchDoctors(q, 5)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"doctors": matches})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"doctors": h.HB.ListDoctors()})
}

func (h *DoctorsHandler) add(c echo.Context) error {
	var req AddDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.HB.AddDoctor(req.Name, req.Specialization, req.AvailableTimings, req.Location, req.Contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}
