package models

import "time"

// Bid представляет модель предложения фрилансера по проекту.
type Bid struct {
	ID                   string    `json:"id"`
	ProjectID            string    `json:"projectId"`
	FreelancerID         string    `json:"freelancerId"`
	Amount               float64   `json:"amount"`
	Proposal             string    `json:"proposal"`
	ProposedTimelineDays int       `json:"proposedTimelineDays"`
	Accepted             bool      `json:"accepted"`
	CreatedAt            time.Time `json:"createdAt"`
}

// BidRequest представляет структуру запроса для создания предложения.
type BidRequest struct {
	Amount               float64 `json:"amount" validate:"required,gt=0"`
	Proposal             string  `json:"proposal" validate:"required"`
	ProposedTimelineDays int     `json:"proposedTimelineDays" validate:"required,min=1"`
	CreatorUsername      string  `json:"creatorUsername" validate:"required"`
}

// AcceptBidRequest представляет структуру запроса для принятия предложения.
type AcceptBidRequest struct {
	BidID string `json:"bidId" validate:"required"`
}
