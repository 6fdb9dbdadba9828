package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"go.uber.org/zap"
)

// ReviewHandler - структура для обработки HTTP-запросов к отзывам.
type ReviewHandler struct {
	Service *services.ReviewService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewReviewHandler создаёт новый экземпляр ReviewHandler.
func NewReviewHandler(service *services.ReviewService, logger *zap.Logger, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// PostReview обрабатывает запросы на создание отзыва по завершённому проекту.
func (h *ReviewHandler) PostReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	username := r.URL.Query().Get("username")

	var reviewReq models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&reviewReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	review, err := h.Service.PostReview(ctx, projectID, username, reviewReq)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to post review")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, review)
}

// GetProjectReviews обрабатывает запросы для получения отзывов по проекту.
func (h *ReviewHandler) GetProjectReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")

	reviews, err := h.Service.GetProjectReviews(ctx, projectID)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to fetch reviews")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, reviews)
}
