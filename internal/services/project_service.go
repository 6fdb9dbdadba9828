package services

import (
	"context"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ProjectService реализует жизненный цикл проекта: создание, просмотр и
// переходы статусов с проверкой роли инициатора.
type ProjectService struct {
	Projects repository.ProjectRepository
	Bids     repository.BidRepository
	Reviews  repository.ReviewRepository
	Users    repository.UserRepository
}

// NewProjectService создаёт новый экземпляр ProjectService.
func NewProjectService(projects repository.ProjectRepository, bids repository.BidRepository, reviews repository.ReviewRepository, users repository.UserRepository) *ProjectService {
	return &ProjectService{Projects: projects, Bids: bids, Reviews: reviews, Users: users}
}

// CreateProject создает новый проект в статусе open.
func (s *ProjectService) CreateProject(ctx context.Context, projectReq models.ProjectRequest) (*models.Project, error) {
	if err := validate.Struct(projectReq); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.Users.GetUserByUsername(ctx, projectReq.CreatorUsername)
	if err != nil {
		return nil, err
	}
	if user.IsFreelancer {
		return nil, models.NewPermissionError("only clients can post projects")
	}
	return s.Projects.CreateProject(ctx, projectReq, user.ID)
}

// FetchOpenProjects получает список открытых проектов.
func (s *ProjectService) FetchOpenProjects(ctx context.Context, limitStr, offsetStr, skill string) ([]models.Project, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Projects.GetOpenProjects(ctx, limit, offset, skill)
}

// GetProjectDetails получает проект вместе с предложениями и отзывами.
func (s *ProjectService) GetProjectDetails(ctx context.Context, projectID string) (*models.ProjectDetails, error) {
	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	bids, err := s.Bids.GetAllProjectBids(ctx, projectID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.Reviews.GetProjectReviews(ctx, projectID)
	if err != nil {
		return nil, err
	}

	details := models.ProjectDetails{Project: *project, Bids: bids, Reviews: reviews}
	if details.Bids == nil {
		details.Bids = []models.Bid{}
	}
	if details.Reviews == nil {
		details.Reviews = []models.Review{}
	}
	return &details, nil
}

// GetClientProjects получает список проектов, размещённых пользователем.
func (s *ProjectService) GetClientProjects(ctx context.Context, limitStr, offsetStr, username string) ([]models.Project, error) {
	if username == "" {
		return nil, models.NewValidationError("missing required query parameter: username")
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Projects.GetClientProjects(ctx, limit, offset, user.ID)
}

// EditProject меняет описание открытого проекта. Доступно только владельцу.
func (s *ProjectService) EditProject(ctx context.Context, projectID, username string, updateFields map[string]interface{}) (*models.Project, error) {
	project, _, err := s.getProjectForOwner(ctx, projectID, username)
	if err != nil {
		return nil, err
	}
	if project.Status != models.OpenProject {
		return nil, models.NewStateConflictError("project can no longer be edited, bidding is closed")
	}

	if deadlineDays, ok := updateFields["deadlineDays"].(float64); ok && deadlineDays < 2 {
		return nil, models.NewValidationError("deadlineDays must be at least 2")
	}
	if budget, ok := updateFields["budget"].(float64); ok && budget <= 0 {
		return nil, models.NewValidationError("budget must be positive")
	}
	return s.Projects.EditProject(ctx, projectID, updateFields)
}

// CompleteProject сдаёт работу на проверку. Доступно только назначенному
// фрилансеру из статусов in_progress и needs_revision.
func (s *ProjectService) CompleteProject(ctx context.Context, projectID, username string) (*models.Project, error) {
	if username == "" {
		return nil, models.NewValidationError("missing required query parameter: username")
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.FreelancerID == nil || *project.FreelancerID != user.ID {
		return nil, models.NewPermissionError("only the assigned freelancer can complete the project")
	}
	if !models.CanTransition(project.Status, models.PendingReviewProject) {
		return nil, models.NewStateConflictError("project cannot be completed from status " + string(project.Status))
	}
	return s.Projects.CompleteProject(ctx, projectID, time.Now().UTC())
}

// RequestRevision возвращает сданную работу на доработку. Доступно только
// владельцу проекта из статуса pending_review.
func (s *ProjectService) RequestRevision(ctx context.Context, projectID, username string) (*models.Project, error) {
	project, _, err := s.getProjectForOwner(ctx, projectID, username)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(project.Status, models.NeedsRevisionProject) {
		return nil, models.NewStateConflictError("revision can be requested only while the project is pending review")
	}
	return s.Projects.TransitionStatus(ctx, projectID, []models.ProjectStatus{models.PendingReviewProject}, models.NeedsRevisionProject)
}

// AcceptWork принимает сданную работу и завершает проект. Доступно только
// владельцу проекта из статуса pending_review.
func (s *ProjectService) AcceptWork(ctx context.Context, projectID, username string) (*models.Project, error) {
	project, _, err := s.getProjectForOwner(ctx, projectID, username)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(project.Status, models.CompletedProject) {
		return nil, models.NewStateConflictError("work can be accepted only while the project is pending review")
	}
	return s.Projects.AcceptWork(ctx, projectID)
}

// getProjectForOwner загружает проект и проверяет, что действие выполняет
// его владелец.
func (s *ProjectService) getProjectForOwner(ctx context.Context, projectID, username string) (*models.Project, *models.User, error) {
	if username == "" {
		return nil, nil, models.NewValidationError("missing required query parameter: username")
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project.ClientID != user.ID {
		return nil, nil, models.NewPermissionError("only the project owner can perform this action")
	}
	return project, user, nil
}
