package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const projectColumns = `id, title, description, budget, status, required_skills, deadline_days,
       client_id, freelancer_id, accepted_bid_id, started_at, completed_at, created_at`

// ProjectRepository - интерфейс для работы с проектами.
type ProjectRepository interface {
	CreateProject(ctx context.Context, projectReq models.ProjectRequest, clientID string) (*models.Project, error)
	GetOpenProjects(ctx context.Context, limit, offset int, skill string) ([]models.Project, error)
	GetProjectByID(ctx context.Context, projectID string) (*models.Project, error)
	GetClientProjects(ctx context.Context, limit, offset int, clientID string) ([]models.Project, error)
	EditProject(ctx context.Context, projectID string, updateFields map[string]interface{}) (*models.Project, error)
	TransitionStatus(ctx context.Context, projectID string, from []models.ProjectStatus, to models.ProjectStatus) (*models.Project, error)
	CompleteProject(ctx context.Context, projectID string, now time.Time) (*models.Project, error)
	AcceptWork(ctx context.Context, projectID string) (*models.Project, error)
}

// PostgresProjectRepository - реализация ProjectRepository для базы данных.
type PostgresProjectRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProjectRepository создаёт новый экземпляр PostgresProjectRepository.
func NewPostgresProjectRepository(db *pgxpool.Pool) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

type projectRow interface {
	Scan(dest ...interface{}) error
}

func scanProject(row projectRow) (*models.Project, error) {
	var project models.Project
	if err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Budget,
		&project.Status,
		&project.RequiredSkills,
		&project.DeadlineDays,
		&project.ClientID,
		&project.FreelancerID,
		&project.AcceptedBidID,
		&project.StartedAt,
		&project.CompletedAt,
		&project.CreatedAt); err != nil {
		return nil, err
	}
	return &project, nil
}

func statusStrings(statuses []models.ProjectStatus) []string {
	result := make([]string, len(statuses))
	for i, status := range statuses {
		result[i] = string(status)
	}
	return result
}

// CreateProject создает новый проект в статусе open.
func (r *PostgresProjectRepository) CreateProject(ctx context.Context, projectReq models.ProjectRequest, clientID string) (*models.Project, error) {
	newProject := models.Project{
		ID:             uuid.New().String(),
		Title:          projectReq.Title,
		Description:    projectReq.Description,
		Budget:         projectReq.Budget,
		Status:         models.OpenProject,
		RequiredSkills: projectReq.RequiredSkills,
		DeadlineDays:   projectReq.DeadlineDays,
		ClientID:       clientID,
		CreatedAt:      time.Now().UTC(),
	}
	insertQuery := `INSERT INTO project (id, title, description, budget, status, required_skills, deadline_days, client_id, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newProject.ID,
		newProject.Title,
		newProject.Description,
		newProject.Budget,
		newProject.Status,
		pq.Array(newProject.RequiredSkills),
		newProject.DeadlineDays,
		newProject.ClientID,
		newProject.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return &newProject, nil
}

// GetOpenProjects возвращает список открытых проектов с фильтром по навыку.
func (r *PostgresProjectRepository) GetOpenProjects(ctx context.Context, limit, offset int, skill string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE status = $1`
	args := []interface{}{models.OpenProject}
	argIndex := 2

	if skill != "" {
		query += fmt.Sprintf(" AND $%d = ANY(required_skills)", argIndex)
		args = append(args, skill)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// GetProjectByID получает проект по ID.
func (r *PostgresProjectRepository) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE id = $1`
	project, err := scanProject(r.DB.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("project not found")
		}
		return nil, err
	}
	return project, nil
}

// GetClientProjects возвращает список проектов, размещённых клиентом.
func (r *PostgresProjectRepository) GetClientProjects(ctx context.Context, limit, offset int, clientID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE client_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// EditProject меняет описание открытого проекта.
func (r *PostgresProjectRepository) EditProject(ctx context.Context, projectID string, updateFields map[string]interface{}) (*models.Project, error) {
	var updates []string
	args := []interface{}{projectID}
	argIndex := 2

	if title, ok := updateFields["title"].(string); ok && title != "" {
		updates = append(updates, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, title)
		argIndex++
	}

	if description, ok := updateFields["description"].(string); ok && description != "" {
		updates = append(updates, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, description)
		argIndex++
	}

	if budget, ok := updateFields["budget"].(float64); ok {
		updates = append(updates, fmt.Sprintf("budget = $%d", argIndex))
		args = append(args, budget)
		argIndex++
	}

	if deadlineDays, ok := updateFields["deadlineDays"].(float64); ok {
		updates = append(updates, fmt.Sprintf("deadline_days = $%d", argIndex))
		args = append(args, int(deadlineDays))
		argIndex++
	}

	if rawSkills, ok := updateFields["requiredSkills"].([]interface{}); ok {
		var skills []string
		for _, rawSkill := range rawSkills {
			if skill, ok := rawSkill.(string); ok && skill != "" {
				skills = append(skills, skill)
			}
		}
		if len(skills) == 0 {
			return nil, models.NewValidationError("requiredSkills must contain at least one skill")
		}
		updates = append(updates, fmt.Sprintf("required_skills = $%d", argIndex))
		args = append(args, pq.Array(skills))
		argIndex++
	}

	if len(updates) == 0 {
		return nil, models.NewValidationError("no valid fields to update")
	}

	// Правка допустима только пока проект открыт для предложений.
	updateQuery := fmt.Sprintf(
		"UPDATE project SET %s WHERE id = $1 AND status = '%s' RETURNING %s",
		strings.Join(updates, ", "), models.OpenProject, projectColumns)

	project, err := scanProject(r.DB.QueryRow(ctx, updateQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, err := r.GetProjectByID(ctx, projectID)
			if err != nil {
				return nil, err
			}
			return nil, models.NewStateConflictError(fmt.Sprintf("project can no longer be edited, status is %s", current.Status))
		}
		return nil, err
	}
	return project, nil
}

// TransitionStatus атомарно переводит проект в новый статус.
// Исходный статус проверяется в том же UPDATE, поэтому устаревшее чтение
// не может зафиксировать недопустимый переход.
func (r *PostgresProjectRepository) TransitionStatus(ctx context.Context, projectID string, from []models.ProjectStatus, to models.ProjectStatus) (*models.Project, error) {
	updateQuery := `UPDATE project SET status = $1 WHERE id = $2 AND status = ANY($3) RETURNING ` + projectColumns
	project, err := scanProject(r.DB.QueryRow(ctx, updateQuery, to, projectID, pq.Array(statusStrings(from))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.statusConflict(ctx, projectID, to)
		}
		return nil, err
	}
	return project, nil
}

// CompleteProject переводит проект в pending_review и обновляет счётчики
// своевременности фрилансера в одной транзакции.
func (r *PostgresProjectRepository) CompleteProject(ctx context.Context, projectID string, now time.Time) (*models.Project, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updateQuery := `UPDATE project SET status = $1, completed_at = $2
	                WHERE id = $3 AND status = ANY($4) RETURNING ` + projectColumns
	fromStatuses := []models.ProjectStatus{models.InProgressProject, models.NeedsRevisionProject}
	project, err := scanProject(tx.QueryRow(ctx, updateQuery, models.PendingReviewProject, now, projectID, pq.Array(statusStrings(fromStatuses))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.statusConflict(ctx, projectID, models.PendingReviewProject)
		}
		return nil, err
	}

	if project.StartedAt != nil && project.FreelancerID != nil {
		counter := "delayed_count"
		deadline := project.StartedAt.Add(time.Duration(project.DeadlineDays) * 24 * time.Hour)
		if !now.After(deadline) {
			counter = "on_time_count"
		}
		statsQuery := fmt.Sprintf(`UPDATE usr SET %s = %s + 1 WHERE id = $1`, counter, counter)
		if _, err = tx.Exec(ctx, statsQuery, *project.FreelancerID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

// AcceptWork переводит проект из pending_review в completed и увеличивает
// счётчик завершённых проектов фрилансера.
func (r *PostgresProjectRepository) AcceptWork(ctx context.Context, projectID string) (*models.Project, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updateQuery := `UPDATE project SET status = $1 WHERE id = $2 AND status = $3 RETURNING ` + projectColumns
	project, err := scanProject(tx.QueryRow(ctx, updateQuery, models.CompletedProject, projectID, models.PendingReviewProject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.statusConflict(ctx, projectID, models.CompletedProject)
		}
		return nil, err
	}

	if project.FreelancerID != nil {
		statsQuery := `UPDATE usr SET projects_completed = projects_completed + 1 WHERE id = $1`
		if _, err = tx.Exec(ctx, statsQuery, *project.FreelancerID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

// statusConflict разбирает неудавшийся compare-and-set: проект либо не
// существует, либо находится в статусе, из которого переход недопустим.
func (r *PostgresProjectRepository) statusConflict(ctx context.Context, projectID string, to models.ProjectStatus) error {
	current, err := r.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	return models.NewStateConflictError(fmt.Sprintf("cannot move project from status %s to %s", current.Status, to))
}
