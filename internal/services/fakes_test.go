package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/stretchr/testify/require"
)

var (
	_ repository.ProjectRepository = (*fakeProjectRepo)(nil)
	_ repository.BidRepository     = (*fakeBidRepo)(nil)
	_ repository.ReviewRepository  = (*fakeReviewRepo)(nil)
	_ repository.UserRepository    = (*fakeUserRepo)(nil)
)

// fakeStore хранит состояние in-memory репозиториев. Все операции выполняются
// под общим мьютексом, переходы статусов повторяют compare-and-set семантику
// настоящих запросов.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	projects map[string]*models.Project
	bids     map[string]*models.Bid
	reviews  []models.Review
	seq      int
	baseTime time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*models.User),
		projects: make(map[string]*models.Project),
		bids:     make(map[string]*models.Bid),
		baseTime: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// nextID выдаёт детерминированный ID и монотонную метку времени.
func (s *fakeStore) nextID(kind string) (string, time.Time) {
	s.seq++
	return fmt.Sprintf("%s-%d", kind, s.seq), s.baseTime.Add(time.Duration(s.seq) * time.Second)
}

func (s *fakeStore) addClient(username string) *models.User {
	return s.addUser(username, false, 0)
}

func (s *fakeStore) addFreelancer(username string, avgRating float64) *models.User {
	return s.addUser(username, true, avgRating)
}

func (s *fakeStore) addUser(username string, isFreelancer bool, avgRating float64) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := s.nextID("user")
	user := &models.User{
		ID:           id,
		Username:     username,
		IsFreelancer: isFreelancer,
		Skills:       []string{},
		AvgRating:    avgRating,
	}
	s.users[id] = user
	return user
}

func (s *fakeStore) projectCopy(project *models.Project) *models.Project {
	copied := *project
	return &copied
}

type fakeProjectRepo struct {
	store *fakeStore
}

func (r *fakeProjectRepo) CreateProject(ctx context.Context, projectReq models.ProjectRequest, clientID string) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, createdAt := r.store.nextID("project")
	project := &models.Project{
		ID:             id,
		Title:          projectReq.Title,
		Description:    projectReq.Description,
		Budget:         projectReq.Budget,
		Status:         models.OpenProject,
		RequiredSkills: projectReq.RequiredSkills,
		DeadlineDays:   projectReq.DeadlineDays,
		ClientID:       clientID,
		CreatedAt:      createdAt,
	}
	r.store.projects[id] = project
	return r.store.projectCopy(project), nil
}

func (r *fakeProjectRepo) GetOpenProjects(ctx context.Context, limit, offset int, skill string) ([]models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var projects []models.Project
	for _, project := range r.store.projects {
		if project.Status != models.OpenProject {
			continue
		}
		if skill != "" && !containsSkill(project.RequiredSkills, skill) {
			continue
		}
		projects = append(projects, *project)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return paginate(projects, limit, offset), nil
}

func (r *fakeProjectRepo) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	return r.store.projectCopy(project), nil
}

func (r *fakeProjectRepo) GetClientProjects(ctx context.Context, limit, offset int, clientID string) ([]models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var projects []models.Project
	for _, project := range r.store.projects {
		if project.ClientID == clientID {
			projects = append(projects, *project)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return paginate(projects, limit, offset), nil
}

func (r *fakeProjectRepo) EditProject(ctx context.Context, projectID string, updateFields map[string]interface{}) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	if project.Status != models.OpenProject {
		return nil, models.NewStateConflictError(fmt.Sprintf("project can no longer be edited, status is %s", project.Status))
	}

	if title, ok := updateFields["title"].(string); ok && title != "" {
		project.Title = title
	}
	if description, ok := updateFields["description"].(string); ok && description != "" {
		project.Description = description
	}
	if budget, ok := updateFields["budget"].(float64); ok {
		project.Budget = budget
	}
	if deadlineDays, ok := updateFields["deadlineDays"].(float64); ok {
		project.DeadlineDays = int(deadlineDays)
	}
	return r.store.projectCopy(project), nil
}

func (r *fakeProjectRepo) TransitionStatus(ctx context.Context, projectID string, from []models.ProjectStatus, to models.ProjectStatus) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	if !statusIn(project.Status, from) {
		return nil, models.NewStateConflictError(fmt.Sprintf("cannot move project from status %s to %s", project.Status, to))
	}
	project.Status = to
	return r.store.projectCopy(project), nil
}

func (r *fakeProjectRepo) CompleteProject(ctx context.Context, projectID string, now time.Time) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	if !statusIn(project.Status, []models.ProjectStatus{models.InProgressProject, models.NeedsRevisionProject}) {
		return nil, models.NewStateConflictError(fmt.Sprintf("cannot move project from status %s to %s", project.Status, models.PendingReviewProject))
	}
	project.Status = models.PendingReviewProject
	completedAt := now
	project.CompletedAt = &completedAt

	if project.StartedAt != nil && project.FreelancerID != nil {
		freelancer := r.store.users[*project.FreelancerID]
		deadline := project.StartedAt.Add(time.Duration(project.DeadlineDays) * 24 * time.Hour)
		if now.After(deadline) {
			freelancer.DelayedCount++
		} else {
			freelancer.OnTimeCount++
		}
	}
	return r.store.projectCopy(project), nil
}

func (r *fakeProjectRepo) AcceptWork(ctx context.Context, projectID string) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	if project.Status != models.PendingReviewProject {
		return nil, models.NewStateConflictError(fmt.Sprintf("cannot move project from status %s to %s", project.Status, models.CompletedProject))
	}
	project.Status = models.CompletedProject
	if project.FreelancerID != nil {
		r.store.users[*project.FreelancerID].ProjectsCompleted++
	}
	return r.store.projectCopy(project), nil
}

type fakeBidRepo struct {
	store *fakeStore
}

func (r *fakeBidRepo) CreateBid(ctx context.Context, bidReq models.BidRequest, projectID, freelancerID string) (*models.Bid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	if project.Status != models.OpenProject {
		return nil, models.NewStateConflictError("project is no longer open for bidding")
	}
	for _, bid := range r.store.bids {
		if bid.ProjectID == projectID && bid.FreelancerID == freelancerID {
			return nil, models.NewDuplicateError("freelancer has already placed a bid on this project")
		}
	}

	id, createdAt := r.store.nextID("bid")
	bid := &models.Bid{
		ID:                   id,
		ProjectID:            projectID,
		FreelancerID:         freelancerID,
		Amount:               bidReq.Amount,
		Proposal:             bidReq.Proposal,
		ProposedTimelineDays: bidReq.ProposedTimelineDays,
		CreatedAt:            createdAt,
	}
	r.store.bids[id] = bid
	copied := *bid
	return &copied, nil
}

func (r *fakeBidRepo) GetProjectBids(ctx context.Context, projectID string, limit, offset int) ([]models.Bid, error) {
	bids, err := r.GetAllProjectBids(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return paginate(bids, limit, offset), nil
}

func (r *fakeBidRepo) GetAllProjectBids(ctx context.Context, projectID string) ([]models.Bid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var bids []models.Bid
	for _, bid := range r.store.bids {
		if bid.ProjectID == projectID {
			bids = append(bids, *bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		}
		return bids[i].ID < bids[j].ID
	})
	return bids, nil
}

func (r *fakeBidRepo) GetBidByID(ctx context.Context, bidID string) (*models.Bid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bid, ok := r.store.bids[bidID]
	if !ok {
		return nil, models.NewNotFoundError("bid not found")
	}
	copied := *bid
	return &copied, nil
}

func (r *fakeBidRepo) AcceptBid(ctx context.Context, projectID, bidID string, now time.Time) (*models.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	project, ok := r.store.projects[projectID]
	if !ok {
		return nil, models.NewNotFoundError("project not found")
	}
	if project.Status != models.OpenProject {
		return nil, models.NewStateConflictError("project is no longer open, another bid has been accepted")
	}
	bid, ok := r.store.bids[bidID]
	if !ok || bid.ProjectID != projectID {
		return nil, models.NewNotFoundError("bid not found for this project")
	}

	startedAt := now
	project.Status = models.InProgressProject
	project.FreelancerID = &bid.FreelancerID
	project.AcceptedBidID = &bid.ID
	project.StartedAt = &startedAt
	bid.Accepted = true
	r.store.users[bid.FreelancerID].ProjectsAccepted++
	return r.store.projectCopy(project), nil
}

type fakeReviewRepo struct {
	store *fakeStore
}

func (r *fakeReviewRepo) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.reviews {
		if existing.ProjectID == review.ProjectID && existing.ReviewerID == review.ReviewerID {
			return nil, models.NewDuplicateError("review for this project has already been submitted")
		}
	}

	review.ID, review.CreatedAt = r.store.nextID("review")
	r.store.reviews = append(r.store.reviews, review)

	var sum, count float64
	for _, existing := range r.store.reviews {
		if existing.RevieweeID == review.RevieweeID {
			sum += float64(existing.Rating)
			count++
		}
	}
	r.store.users[review.RevieweeID].AvgRating = math.Round(sum/count*100) / 100
	return &review, nil
}

func (r *fakeReviewRepo) GetProjectReviews(ctx context.Context, projectID string) ([]models.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var reviews []models.Review
	for _, review := range r.store.reviews {
		if review.ProjectID == projectID {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.NewNotFoundError("user does not exist")
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[userID]
	if !ok {
		return nil, models.NewNotFoundError("user does not exist")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetFreelancerStats(ctx context.Context, freelancerIDs []string) (map[string]models.FreelancerStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stats := make(map[string]models.FreelancerStats, len(freelancerIDs))
	for _, id := range freelancerIDs {
		user, ok := r.store.users[id]
		if !ok {
			continue
		}
		stats[id] = models.FreelancerStats{
			FreelancerID:      user.ID,
			Username:          user.Username,
			AvgRating:         user.AvgRating,
			ProjectsCompleted: user.ProjectsCompleted,
			OnTimeCount:       user.OnTimeCount,
			DelayedCount:      user.DelayedCount,
		}
	}
	return stats, nil
}

// testEnv собирает сервисы поверх общего in-memory хранилища.
type testEnv struct {
	store    *fakeStore
	projects *ProjectService
	bids     *BidService
	ranking  *RankingService
	reviews  *ReviewService
	users    *UserService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	projectRepo := &fakeProjectRepo{store: store}
	bidRepo := &fakeBidRepo{store: store}
	reviewRepo := &fakeReviewRepo{store: store}
	userRepo := &fakeUserRepo{store: store}

	return &testEnv{
		store:    store,
		projects: NewProjectService(projectRepo, bidRepo, reviewRepo, userRepo),
		bids:     NewBidService(bidRepo, projectRepo, userRepo),
		ranking:  NewRankingService(bidRepo, projectRepo, userRepo),
		reviews:  NewReviewService(reviewRepo, projectRepo, userRepo),
		users:    NewUserService(userRepo),
	}
}

// requireErrorCode проверяет, что ошибка принадлежит ожидаемой категории.
func requireErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	require.Equal(t, code, errorResponse.Code)
}

func containsSkill(skills []string, skill string) bool {
	for _, s := range skills {
		if s == skill {
			return true
		}
	}
	return false
}

func statusIn(status models.ProjectStatus, statuses []models.ProjectStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
