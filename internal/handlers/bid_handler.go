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

// BidHandler - структура для обработки HTTP-запросов к предложениям.
type BidHandler struct {
	Service *services.BidService
	Ranking *services.RankingService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewBidHandler создаёт новый экземпляр BidHandler.
func NewBidHandler(service *services.BidService, ranking *services.RankingService, logger *zap.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service: service,
		Ranking: ranking,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateBid обрабатывает запросы для подачи предложения по проекту.
func (h *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")

	var bidReq models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&bidReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	bid, err := h.Service.CreateBid(ctx, projectID, bidReq)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to create bid")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, bid)
}

// GetProjectBids обрабатывает запросы для получения предложений по проекту.
func (h *BidHandler) GetProjectBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	bids, err := h.Service.GetProjectBids(ctx, projectID, limitStr, offsetStr)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to fetch bids")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, bids)
}

// RankBids обрабатывает запросы на ранжирование предложений проекта.
func (h *BidHandler) RankBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")

	var rankReq models.RankRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&rankReq); err != nil {
			utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
			return
		}
	}

	result, err := h.Ranking.RankBids(ctx, projectID, rankReq.Priority)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to rank bids")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, result)
}

// AcceptBid обрабатывает запросы на принятие предложения владельцем проекта.
func (h *BidHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	username := r.URL.Query().Get("username")

	var acceptReq models.AcceptBidRequest
	if err := json.NewDecoder(r.Body).Decode(&acceptReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	project, err := h.Service.AcceptBid(ctx, projectID, username, acceptReq)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to accept bid")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, project)
}
