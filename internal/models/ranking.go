package models

type RankPriority string // Приоритет ранжирования предложений

const (
	BalancedPriority RankPriority = "balanced" // Все критерии равнозначны
	PricePriority    RankPriority = "price"    // Приоритет низкой цены
	RatingPriority   RankPriority = "rating"   // Приоритет рейтинга фрилансера
	TimePriority     RankPriority = "time"     // Приоритет коротких сроков
)

// RankingWeights задаёт веса критериев при подсчёте итогового балла предложения.
type RankingWeights struct {
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
	Time   float64 `json:"time"`
}

// PriorityWeights - таблица весов критериев по приоритетам ранжирования.
var PriorityWeights = map[RankPriority]RankingWeights{
	BalancedPriority: {Price: 1.0 / 3.0, Rating: 1.0 / 3.0, Time: 1.0 / 3.0},
	PricePriority:    {Price: 0.7, Rating: 0.15, Time: 0.15},
	RatingPriority:   {Price: 0.15, Rating: 0.7, Time: 0.15},
	TimePriority:     {Price: 0.15, Rating: 0.15, Time: 0.7},
}

// RankRequest представляет структуру запроса для ранжирования предложений.
type RankRequest struct {
	Priority RankPriority `json:"priority"`
}

// RankedBid представляет предложение с подсчитанным баллом и статистикой автора.
type RankedBid struct {
	Bid
	Freelancer FreelancerStats `json:"freelancer"`
	Score      float64         `json:"score"`
}

// RankingResult представляет результат ранжирования предложений проекта.
// Результат вычисляется на лету и нигде не сохраняется.
type RankingResult struct {
	WeightsApplied RankingWeights `json:"weightsApplied"`
	RankedBids     []RankedBid    `json:"rankedBids"`
}
