package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

// UserService отдаёт публичные профили пользователей.
type UserService struct {
	Users repository.UserRepository
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{Users: users}
}

// GetUserProfile получает публичный профиль пользователя по ID.
func (s *UserService) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, models.NewValidationError("missing required path parameter: userId")
	}
	return s.Users.GetUserByID(ctx, userID)
}
