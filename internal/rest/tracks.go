package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"otodoki/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type TrackService interface {
	GetTrack(ctx context.Context, catalogID string) (domain.Track, error)
}

type TrackHandler struct {
	trackService TrackService
	timeout      time.Duration
}

func NewTrackHandler(trackService TrackService) *TrackHandler {
	return &TrackHandler{
		trackService: trackService,
		timeout:      10 * time.Second,
	}
}

// GetTrack returns one cached track by catalog id.
func (h *TrackHandler) GetTrack(c echo.Context) error {
	catalogID := c.Param("id")
	if catalogID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "catalog id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	track, err := h.trackService.GetTrack(ctx, catalogID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(track))
}
