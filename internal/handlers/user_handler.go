package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"go.uber.org/zap"
)

// UserHandler - структура для обработки HTTP-запросов к профилям пользователей.
type UserHandler struct {
	Service *services.UserService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(service *services.UserService, logger *zap.Logger, timeout time.Duration) *UserHandler {
	return &UserHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetUserProfile обрабатывает запросы для получения публичного профиля.
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	userID := r.PathValue("userId")

	user, err := h.Service.GetUserProfile(ctx, userID)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to fetch user profile")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, user)
}
