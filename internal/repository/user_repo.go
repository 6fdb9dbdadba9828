package repository

import (
	"context"
	"errors"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const userColumns = `id, username, is_freelancer, bio, skills, avg_rating,
       projects_accepted, projects_completed, on_time_count, delayed_count`

// UserRepository - интерфейс для чтения пользователей и статистики фрилансеров.
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetFreelancerStats(ctx context.Context, freelancerIDs []string) (map[string]models.FreelancerStats, error)
}

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresUserRepository создает новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func scanUser(row projectRow) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.IsFreelancer,
		&user.Bio,
		&user.Skills,
		&user.AvgRating,
		&user.ProjectsAccepted,
		&user.ProjectsCompleted,
		&user.OnTimeCount,
		&user.DelayedCount); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername получает пользователя по имени.
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM usr WHERE username = $1`
	user, err := scanUser(r.DB.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("user does not exist")
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID получает пользователя по ID.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM usr WHERE id = $1`
	user, err := scanUser(r.DB.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("user does not exist")
		}
		return nil, err
	}
	return user, nil
}

// GetFreelancerStats возвращает статистику фрилансеров для ранжирования.
func (r *PostgresUserRepository) GetFreelancerStats(ctx context.Context, freelancerIDs []string) (map[string]models.FreelancerStats, error) {
	query := `SELECT id, username, avg_rating, projects_completed, on_time_count, delayed_count
	          FROM usr WHERE id = ANY($1)`
	rows, err := r.DB.Query(ctx, query, pq.Array(freelancerIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]models.FreelancerStats, len(freelancerIDs))
	for rows.Next() {
		var s models.FreelancerStats
		if err := rows.Scan(
			&s.FreelancerID,
			&s.Username,
			&s.AvgRating,
			&s.ProjectsCompleted,
			&s.OnTimeCount,
			&s.DelayedCount); err != nil {
			return nil, err
		}
		stats[s.FreelancerID] = s
	}
	return stats, nil
}
