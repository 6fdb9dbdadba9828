package models

// User представляет пользователя маркетплейса.
// Учётные записи создаются внешней подсистемой профилей, сервис их только читает
// и поддерживает счётчики выполненных работ.
type User struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	IsFreelancer      bool     `json:"isFreelancer"`
	Bio               string   `json:"bio"`
	Skills            []string `json:"skills"`
	AvgRating         float64  `json:"avgRating"`
	ProjectsAccepted  int      `json:"projectsAccepted"`
	ProjectsCompleted int      `json:"projectsCompleted"`
	OnTimeCount       int      `json:"onTimeCount"`
	DelayedCount      int      `json:"delayedCount"`
}

// FreelancerStats - read-модель статистики фрилансера для ранжирования предложений.
type FreelancerStats struct {
	FreelancerID      string  `json:"id"`
	Username          string  `json:"username"`
	AvgRating         float64 `json:"avgRating"`
	ProjectsCompleted int     `json:"projectsCompleted"`
	OnTimeCount       int     `json:"onTimeCount"`
	DelayedCount      int     `json:"delayedCount"`
}
