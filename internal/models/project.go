package models

import "time"

type ProjectStatus string // Статус проекта

const (
	OpenProject          ProjectStatus = "open"           // Проект открыт для предложений
	InProgressProject    ProjectStatus = "in_progress"    // Работа над проектом идёт
	NeedsRevisionProject ProjectStatus = "needs_revision" // Клиент запросил доработку
	PendingReviewProject ProjectStatus = "pending_review" // Работа сдана и ждёт проверки клиента
	CompletedProject     ProjectStatus = "completed"      // Проект завершён, терминальный статус
)

// AllowedStatusTransitions описывает все допустимые переходы статусов проекта.
var AllowedStatusTransitions = map[ProjectStatus][]ProjectStatus{
	OpenProject:          {InProgressProject},
	InProgressProject:    {PendingReviewProject},
	NeedsRevisionProject: {PendingReviewProject},
	PendingReviewProject: {CompletedProject, NeedsRevisionProject},
	CompletedProject:     {},
}

// CanTransition проверяет, допустим ли переход из одного статуса в другой.
func CanTransition(from, to ProjectStatus) bool {
	for _, next := range AllowedStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Project представляет модель проекта.
type Project struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Budget         float64       `json:"budget"`
	Status         ProjectStatus `json:"status"`
	RequiredSkills []string      `json:"requiredSkills"`
	DeadlineDays   int           `json:"deadlineDays"`
	ClientID       string        `json:"clientId"`
	FreelancerID   *string       `json:"freelancerId"`
	AcceptedBidID  *string       `json:"acceptedBidId"`
	StartedAt      *time.Time    `json:"startedAt"`
	CompletedAt    *time.Time    `json:"completedAt"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// ProjectRequest представляет структуру запроса для создания проекта.
type ProjectRequest struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Budget          float64  `json:"budget" validate:"required,gt=0"`
	RequiredSkills  []string `json:"requiredSkills" validate:"required,min=1,dive,required"`
	DeadlineDays    int      `json:"deadlineDays" validate:"required,min=2"`
	CreatorUsername string   `json:"creatorUsername" validate:"required"`
}

// ProjectDetails представляет проект вместе с его предложениями и отзывами.
type ProjectDetails struct {
	Project
	Bids    []Bid    `json:"bids"`
	Reviews []Review `json:"reviews"`
}
