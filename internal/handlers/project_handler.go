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

// ProjectHandler - структура для обработки HTTP-запросов к проектам.
type ProjectHandler struct {
	Service *services.ProjectService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewProjectHandler создаёт новый экземпляр ProjectHandler.
func NewProjectHandler(service *services.ProjectService, logger *zap.Logger, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetProjects обрабатывает запросы для получения списка открытых проектов.
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	skill := r.URL.Query().Get("skill")

	projects, err := h.Service.FetchOpenProjects(ctx, limitStr, offsetStr, skill)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to fetch projects")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, projects)
}

// CreateProject обрабатывает запросы для создания проекта.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var projectReq models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&projectReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	project, err := h.Service.CreateProject(ctx, projectReq)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to create project")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, project)
}

// GetMyProjects обрабатывает запросы для получения списка проектов пользователя.
func (h *ProjectHandler) GetMyProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	username := r.URL.Query().Get("username")

	projects, err := h.Service.GetClientProjects(ctx, limitStr, offsetStr, username)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to fetch user projects")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, projects)
}

// GetProjectDetails обрабатывает запросы для получения проекта с предложениями
// и отзывами.
func (h *ProjectHandler) GetProjectDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")

	details, err := h.Service.GetProjectDetails(ctx, projectID)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to fetch project details")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, details)
}

// EditProject обрабатывает запросы для редактирования открытого проекта.
func (h *ProjectHandler) EditProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	username := r.URL.Query().Get("username")

	var updateFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateFields); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	project, err := h.Service.EditProject(ctx, projectID, username, updateFields)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to edit project")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, project)
}

// CompleteProject обрабатывает запросы на сдачу работы фрилансером.
func (h *ProjectHandler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	username := r.URL.Query().Get("username")

	project, err := h.Service.CompleteProject(ctx, projectID, username)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to complete project")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, project)
}

// RequestRevision обрабатывает запросы на возврат работы на доработку.
func (h *ProjectHandler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	username := r.URL.Query().Get("username")

	project, err := h.Service.RequestRevision(ctx, projectID, username)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to request revision")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, project)
}

// AcceptWork обрабатывает запросы на приёмку сданной работы.
func (h *ProjectHandler) AcceptWork(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectID := r.PathValue("projectId")
	username := r.URL.Query().Get("username")

	project, err := h.Service.AcceptWork(ctx, projectID, username)
	if err != nil {
		utils.RespondError(w, h.Logger, err, "failed to accept work")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, project)
}
