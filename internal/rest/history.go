package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"otodoki/business/history"
	"otodoki/domain"
	"otodoki/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HistoryService interface {
	RecordPlay(ctx context.Context, userID uint, input history.RecordPlayInput) (domain.PlayHistory, error)
	ListHistory(ctx context.Context, userID uint) ([]history.PlayRecord, error)
}

type HistoryHandler struct {
	historyService HistoryService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewHistoryHandler(historyService HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type RecordPlayRequest struct {
	CatalogID string                 `json:"catalog_id" validate:"required"`
	Action    string                 `json:"action" validate:"required,oneof=like dislike skip"`
	Context   map[string]interface{} `json:"context"`

	// optional metadata so a track the cache has never seen still gets stored
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Genre       string `json:"genre"`
	ReleaseYear int    `json:"release_year"`
	PreviewURL  string `json:"preview_url"`
	ArtworkURL  string `json:"artwork_url"`
}

// RecordPlay stores one swipe decision for the authenticated user.
func (h *HistoryHandler) RecordPlay(c echo.Context) error {
	var req RecordPlayRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate play history request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	input := history.RecordPlayInput{
		CatalogID: req.CatalogID,
		Action:    req.Action,
		Context:   req.Context,
	}
	if req.Title != "" || req.Artist != "" {
		input.Track = &domain.Track{
			CatalogID:   req.CatalogID,
			Title:       req.Title,
			Artist:      req.Artist,
			Genre:       req.Genre,
			ReleaseYear: req.ReleaseYear,
			PreviewURL:  req.PreviewURL,
			ArtworkURL:  req.ArtworkURL,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entry, err := h.historyService.RecordPlay(ctx, userID, input)
	if err != nil {
		if strings.Contains(err.Error(), "invalid action") || strings.Contains(err.Error(), "required") {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to record play history", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(entry))
}

// ListHistory returns the authenticated user's play history, newest first.
func (h *HistoryHandler) ListHistory(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entries, err := h.historyService.ListHistory(ctx, userID)
	if err != nil {
		logger.Error("Failed to list play history", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(entries))
}
