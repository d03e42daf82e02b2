package httpcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/species"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// createSessionRequest is the body of POST /api/v1/sessions.
type createSessionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Class     string  `json:"class,omitempty"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// resolveResponse is the body of GET /api/v1/species/resolve.
type resolveResponse struct {
	Class              string              `json:"class"`
	Candidates         []species.Candidate `json:"candidates"`
	SeededFromUpstream bool                `json:"seededFromUpstream"`
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	sess, err := s.sessions.Create(c.Request().Context(), req.Latitude, req.Longitude, req.Class)
	if err != nil {
		if errors.IsCategory(err, errors.CategoryValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		webLogger.Error("session creation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "session creation failed"})
	}

	return c.JSON(http.StatusCreated, sess)
}

func (s *Server) handleResolveSpecies(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid or missing lat"})
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid or missing lon"})
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "coordinate out of range"})
	}

	classParam := strings.TrimSpace(c.QueryParam("class"))
	var class taxonomy.Class
	if classParam == "" {
		class = taxonomy.RandomClass()
	} else {
		var ok bool
		class, ok = taxonomy.ClassByName(classParam)
		if !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown taxonomic class: " + classParam})
		}
	}

	candidates := s.resolver.Resolve(c.Request().Context(), lat, lon, class)

	resp := resolveResponse{
		Class:      class.Name,
		Candidates: candidates,
	}
	if entry := s.resolver.CacheSnapshot(lat, lon, class); entry != nil {
		resp.SeededFromUpstream = entry.SeededFromUpstream
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClearCache(c echo.Context) error {
	s.resolver.ClearCache()
	webLogger.Info("species cache cleared via API")
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status  string     `json:"status"`
	Breaker *gbifState `json:"breaker,omitempty"`
}

type gbifState struct {
	IsOpen bool   `json:"isOpen"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok"}
	if s.breaker != nil {
		state := s.breaker.BreakerState()
		resp.Breaker = &gbifState{IsOpen: state.IsOpen, Reason: state.LastOpenReason}
		if state.IsOpen {
			// Degraded but alive: fallbacks still serve
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}
