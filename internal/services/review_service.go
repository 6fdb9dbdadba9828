package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

// ReviewService допускает по одному отзыву от каждой стороны завершённого
// проекта.
type ReviewService struct {
	Reviews  repository.ReviewRepository
	Projects repository.ProjectRepository
	Users    repository.UserRepository
}

// NewReviewService создает новый экземпляр ReviewService.
func NewReviewService(reviews repository.ReviewRepository, projects repository.ProjectRepository, users repository.UserRepository) *ReviewService {
	return &ReviewService{Reviews: reviews, Projects: projects, Users: users}
}

// PostReview создает отзыв по завершённому проекту. Автором может быть клиент
// или назначенный фрилансер, получателем всегда выступает противоположная
// сторона. Изменение отправленного отзыва не поддерживается.
func (s *ReviewService) PostReview(ctx context.Context, projectID, username string, reviewReq models.ReviewRequest) (*models.Review, error) {
	if username == "" {
		return nil, models.NewValidationError("missing required query parameter: username")
	}
	if err := validate.Struct(reviewReq); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.CompletedProject {
		return nil, models.NewStateConflictError("reviews are allowed only after the project is completed")
	}

	var revieweeID string
	switch {
	case user.ID == project.ClientID && project.FreelancerID != nil:
		revieweeID = *project.FreelancerID
	case project.FreelancerID != nil && user.ID == *project.FreelancerID:
		revieweeID = project.ClientID
	default:
		return nil, models.NewPermissionError("only the client and the assigned freelancer can leave reviews")
	}

	review := models.Review{
		ProjectID:  projectID,
		ReviewerID: user.ID,
		RevieweeID: revieweeID,
		Rating:     reviewReq.Rating,
		Comment:    reviewReq.Comment,
	}
	return s.Reviews.CreateReview(ctx, review)
}

// GetProjectReviews получает список отзывов по проекту.
func (s *ReviewService) GetProjectReviews(ctx context.Context, projectID string) ([]models.Review, error) {
	if _, err := s.Projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.Reviews.GetProjectReviews(ctx, projectID)
}
