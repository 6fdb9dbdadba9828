package repository

import (
	"context"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository - интерфейс для работы с отзывами.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (*models.Review, error)
	GetProjectReviews(ctx context.Context, projectID string) ([]models.Review, error)
}

// PostgresReviewRepository - реализация ReviewRepository для базы данных.
type PostgresReviewRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresReviewRepository создает новый экземпляр PostgresReviewRepository.
func NewPostgresReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{DB: db}
}

// CreateReview создает отзыв и пересчитывает средний рейтинг получателя
// в одной транзакции. Повторный отзыв той же стороны отклоняется
// уникальным ограничением (project_id, reviewer_id).
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	review.ID = uuid.New().String()
	review.CreatedAt = time.Now().UTC()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	insertQuery := `INSERT INTO review (id, project_id, reviewer_id, reviewee_id, rating, comment, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.Exec(
		ctx,
		insertQuery,
		review.ID,
		review.ProjectID,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
		review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewDuplicateError("review for this project has already been posted by this user")
		}
		return nil, err
	}

	ratingQuery := `UPDATE usr
	                SET avg_rating = (SELECT ROUND(AVG(rating)::numeric, 2) FROM review WHERE reviewee_id = $1)
	                WHERE id = $1`
	if _, err = tx.Exec(ctx, ratingQuery, review.RevieweeID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &review, nil
}

// GetProjectReviews возвращает отзывы по проекту.
func (r *PostgresReviewRepository) GetProjectReviews(ctx context.Context, projectID string) ([]models.Review, error) {
	query := `SELECT id, project_id, reviewer_id, reviewee_id, rating, comment, created_at
	          FROM review WHERE project_id = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.ProjectID,
			&review.ReviewerID,
			&review.RevieweeID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
