package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bidColumns = `id, project_id, freelancer_id, amount, proposal, proposed_timeline_days, accepted, created_at`

// BidRepository - интерфейс для работы с предложениями.
type BidRepository interface {
	CreateBid(ctx context.Context, bidReq models.BidRequest, projectID, freelancerID string) (*models.Bid, error)
	GetProjectBids(ctx context.Context, projectID string, limit, offset int) ([]models.Bid, error)
	GetAllProjectBids(ctx context.Context, projectID string) ([]models.Bid, error)
	GetBidByID(ctx context.Context, bidID string) (*models.Bid, error)
	AcceptBid(ctx context.Context, projectID, bidID string, now time.Time) (*models.Project, error)
}

// PostgresBidRepository - реализация BidRepository для базы данных.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository создает новый экземпляр PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanBid(row projectRow) (*models.Bid, error) {
	var bid models.Bid
	if err := row.Scan(
		&bid.ID,
		&bid.ProjectID,
		&bid.FreelancerID,
		&bid.Amount,
		&bid.Proposal,
		&bid.ProposedTimelineDays,
		&bid.Accepted,
		&bid.CreatedAt); err != nil {
		return nil, err
	}
	return &bid, nil
}

// CreateBid создает новое предложение. Вставка и проверка статуса проекта
// выполняются одним запросом: предложение, пришедшее одновременно с принятием
// другого, на момент фиксации увидит закрытый проект и будет отклонено.
func (r *PostgresBidRepository) CreateBid(ctx context.Context, bidReq models.BidRequest, projectID, freelancerID string) (*models.Bid, error) {
	newBid := models.Bid{
		ID:                   uuid.New().String(),
		ProjectID:            projectID,
		FreelancerID:         freelancerID,
		Amount:               bidReq.Amount,
		Proposal:             bidReq.Proposal,
		ProposedTimelineDays: bidReq.ProposedTimelineDays,
		Accepted:             false,
		CreatedAt:            time.Now().UTC(),
	}
	insertQuery := `
		INSERT INTO bid (id, project_id, freelancer_id, amount, proposal, proposed_timeline_days, accepted, created_at)
		SELECT $1, $2, $3, $4, $5, $6, false, $7
		WHERE EXISTS (SELECT 1 FROM project WHERE id = $2 AND status = $8)`
	tag, err := r.DB.Exec(
		ctx,
		insertQuery,
		newBid.ID,
		newBid.ProjectID,
		newBid.FreelancerID,
		newBid.Amount,
		newBid.Proposal,
		newBid.ProposedTimelineDays,
		newBid.CreatedAt,
		models.OpenProject)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewDuplicateError("freelancer has already placed a bid on this project")
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS(SELECT 1 FROM project WHERE id = $1)`
		if err := r.DB.QueryRow(ctx, existsQuery, projectID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.NewNotFoundError("project not found")
		}
		return nil, models.NewStateConflictError("project is no longer open for bidding")
	}
	return &newBid, nil
}

// GetProjectBids возвращает страницу предложений проекта в порядке подачи.
func (r *PostgresBidRepository) GetProjectBids(ctx context.Context, projectID string, limit, offset int) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE project_id = $1
	          ORDER BY created_at, id LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, nil
}

// GetAllProjectBids возвращает все предложения проекта в порядке подачи.
func (r *PostgresBidRepository) GetAllProjectBids(ctx context.Context, projectID string) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE project_id = $1 ORDER BY created_at, id`
	rows, err := r.DB.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, nil
}

// GetBidByID возвращает предложение по ID.
func (r *PostgresBidRepository) GetBidByID(ctx context.Context, bidID string) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE id = $1`
	bid, err := scanBid(r.DB.QueryRow(ctx, query, bidID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("bid not found")
		}
		return nil, err
	}
	return bid, nil
}

// AcceptBid принимает предложение и закрывает приём остальных. Первый
// оператор транзакции - compare-and-set по статусу open: из гонки двух
// принятий ровно одно обновит строку, второе получит конфликт состояния.
func (r *PostgresBidRepository) AcceptBid(ctx context.Context, projectID, bidID string, now time.Time) (*models.Project, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE project p
		SET status = $1, freelancer_id = b.freelancer_id, accepted_bid_id = b.id, started_at = $2
		FROM bid b
		WHERE p.id = $3 AND p.status = $4 AND b.id = $5 AND b.project_id = p.id
		RETURNING p.id, p.title, p.description, p.budget, p.status, p.required_skills, p.deadline_days,
		          p.client_id, p.freelancer_id, p.accepted_bid_id, p.started_at, p.completed_at, p.created_at`
	project, err := scanProject(tx.QueryRow(ctx, updateQuery, models.InProgressProject, now, projectID, models.OpenProject, bidID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.acceptConflict(ctx, projectID, bidID)
		}
		return nil, err
	}

	if _, err = tx.Exec(ctx, `UPDATE bid SET accepted = true WHERE id = $1`, bidID); err != nil {
		return nil, err
	}
	if project.FreelancerID != nil {
		statsQuery := `UPDATE usr SET projects_accepted = projects_accepted + 1 WHERE id = $1`
		if _, err = tx.Exec(ctx, statsQuery, *project.FreelancerID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

// acceptConflict разбирает неудавшееся принятие: нет проекта, нет предложения
// либо проект уже взят в работу другим вызовом.
func (r *PostgresBidRepository) acceptConflict(ctx context.Context, projectID, bidID string) error {
	var status models.ProjectStatus
	err := r.DB.QueryRow(ctx, `SELECT status FROM project WHERE id = $1`, projectID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NewNotFoundError("project not found")
		}
		return err
	}
	if status != models.OpenProject {
		return models.NewStateConflictError("project is no longer open, another bid has been accepted")
	}

	var exists bool
	existsQuery := `SELECT EXISTS(SELECT 1 FROM bid WHERE id = $1 AND project_id = $2)`
	if err := r.DB.QueryRow(ctx, existsQuery, bidID, projectID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("bid not found for this project")
	}
	return models.NewInternalError("failed to accept bid")
}
