package services

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/marketplace-service/internal/metrics"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// BidService реализует подачу предложений и их эксклюзивное принятие.
type BidService struct {
	Bids     repository.BidRepository
	Projects repository.ProjectRepository
	Users    repository.UserRepository
}

// NewBidService создает новый экземпляр BidService.
func NewBidService(bids repository.BidRepository, projects repository.ProjectRepository, users repository.UserRepository) *BidService {
	return &BidService{Bids: bids, Projects: projects, Users: users}
}

// CreateBid создает новое предложение по открытому проекту.
func (s *BidService) CreateBid(ctx context.Context, projectID string, bidReq models.BidRequest) (*models.Bid, error) {
	if err := validate.Struct(bidReq); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.Users.GetUserByUsername(ctx, bidReq.CreatorUsername)
	if err != nil {
		return nil, err
	}
	if !user.IsFreelancer {
		return nil, models.NewPermissionError("only freelancers can place bids")
	}

	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.OpenProject {
		return nil, models.NewStateConflictError("project is no longer open for bidding")
	}

	// Статус проверяется повторно в момент вставки: проверка выше лишь
	// отсекает заведомо закрытые проекты до обращения к базе.
	return s.Bids.CreateBid(ctx, bidReq, projectID, user.ID)
}

// GetProjectBids получает список предложений по проекту.
func (s *BidService) GetProjectBids(ctx context.Context, projectID, limitStr, offsetStr string) ([]models.Bid, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.Projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.Bids.GetProjectBids(ctx, projectID, limit, offset)
}

// AcceptBid принимает предложение от имени владельца проекта. При гонке двух
// принятий по одному проекту побеждает ровно одно, второе получает конфликт.
func (s *BidService) AcceptBid(ctx context.Context, projectID, username string, acceptReq models.AcceptBidRequest) (*models.Project, error) {
	if username == "" {
		return nil, models.NewValidationError("missing required query parameter: username")
	}
	if err := validate.Struct(acceptReq); err != nil {
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
	if project.ClientID != user.ID {
		return nil, models.NewPermissionError("only the project owner can accept bids")
	}

	bid, err := s.Bids.GetBidByID(ctx, acceptReq.BidID)
	if err != nil {
		return nil, err
	}
	if bid.ProjectID != projectID {
		return nil, models.NewNotFoundError("bid not found for this project")
	}

	updated, err := s.Bids.AcceptBid(ctx, projectID, acceptReq.BidID, time.Now().UTC())
	if err != nil {
		var errorResponse *models.ErrorResponse
		if errors.As(err, &errorResponse) && errorResponse.Code == models.StateConflictErrorCode {
			metrics.IncrementBidAcceptance("conflict")
		}
		return nil, err
	}
	metrics.IncrementBidAcceptance("accepted")
	return updated, nil
}
