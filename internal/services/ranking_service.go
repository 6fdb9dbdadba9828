package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/senyabanana/marketplace-service/internal/metrics"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

const maxCriterionScore = 10.0

// RankingService ранжирует предложения проекта по цене, рейтингу фрилансера
// и срокам. Подсчёт чистый и read-only: результат не сохраняется и не влияет
// на принятие предложений.
type RankingService struct {
	Bids     repository.BidRepository
	Projects repository.ProjectRepository
	Users    repository.UserRepository
}

// NewRankingService создает новый экземпляр RankingService.
func NewRankingService(bids repository.BidRepository, projects repository.ProjectRepository, users repository.UserRepository) *RankingService {
	return &RankingService{Bids: bids, Projects: projects, Users: users}
}

// RankBids возвращает предложения проекта, упорядоченные по убыванию балла.
// Повторный вызов на том же наборе предложений и статистик даёт тот же порядок.
func (s *RankingService) RankBids(ctx context.Context, projectID string, priority models.RankPriority) (*models.RankingResult, error) {
	if priority == "" {
		priority = models.BalancedPriority
	}
	weights, ok := models.PriorityWeights[priority]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported ranking priority: %s", priority))
	}

	if _, err := s.Projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	bids, err := s.Bids.GetAllProjectBids(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result := models.RankingResult{WeightsApplied: weights, RankedBids: []models.RankedBid{}}
	if len(bids) == 0 {
		return &result, nil
	}

	freelancerIDs := make([]string, 0, len(bids))
	seen := make(map[string]bool, len(bids))
	for _, bid := range bids {
		if !seen[bid.FreelancerID] {
			seen[bid.FreelancerID] = true
			freelancerIDs = append(freelancerIDs, bid.FreelancerID)
		}
	}

	stats, err := s.Users.GetFreelancerStats(ctx, freelancerIDs)
	if err != nil {
		return nil, err
	}

	result.RankedBids = scoreBids(bids, stats, weights)
	metrics.IncrementRankingRequest(string(priority))
	return &result, nil
}

// scoreBids подсчитывает баллы и сортирует предложения. При равенстве баллов
// выше стоит предложение, поданное раньше.
func scoreBids(bids []models.Bid, stats map[string]models.FreelancerStats, weights models.RankingWeights) []models.RankedBid {
	amounts := make([]float64, len(bids))
	ratings := make([]float64, len(bids))
	timelines := make([]float64, len(bids))
	for i, bid := range bids {
		amounts[i] = bid.Amount
		ratings[i] = stats[bid.FreelancerID].AvgRating
		timelines[i] = float64(bid.ProposedTimelineDays)
	}

	priceScores := normalizeCriterion(amounts, true)
	ratingScores := normalizeCriterion(ratings, false)
	timeScores := normalizeCriterion(timelines, true)

	ranked := make([]models.RankedBid, len(bids))
	for i, bid := range bids {
		score := weights.Price*priceScores[i] + weights.Rating*ratingScores[i] + weights.Time*timeScores[i]
		if score < 0 {
			score = 0
		}
		if score > maxCriterionScore {
			score = maxCriterionScore
		}
		ranked[i] = models.RankedBid{Bid: bid, Freelancer: stats[bid.FreelancerID], Score: score}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// normalizeCriterion приводит значения критерия к шкале [0,10] по min-max.
// Если все значения совпадают, каждое получает максимум: общее для всех
// значение не штрафует никого.
func normalizeCriterion(values []float64, lowerBetter bool) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	scores := make([]float64, len(values))
	if hi == lo {
		for i := range scores {
			scores[i] = maxCriterionScore
		}
		return scores
	}
	for i, v := range values {
		if lowerBetter {
			scores[i] = maxCriterionScore * (hi - v) / (hi - lo)
		} else {
			scores[i] = maxCriterionScore * (v - lo) / (hi - lo)
		}
	}
	return scores
}
