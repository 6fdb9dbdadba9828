package models

import "time"

// Review представляет отзыв по завершённому проекту.
// На проект допускается не более одного отзыва от каждой стороны.
type Review struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	ReviewerID string    `json:"reviewerId"`
	RevieweeID string    `json:"revieweeId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewRequest представляет структуру запроса для создания отзыва.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
