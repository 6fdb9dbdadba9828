package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRoutes(projectHandler *handlers.ProjectHandler, bidHandler *handlers.BidHandler, reviewHandler *handlers.ReviewHandler, userHandler *handlers.UserHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("/api/projects", projectHandler.GetProjects)
	mux.HandleFunc("/api/projects/new", projectHandler.CreateProject)
	mux.HandleFunc("/api/projects/my", projectHandler.GetMyProjects)
	mux.HandleFunc("GET /api/projects/{projectId}", projectHandler.GetProjectDetails)
	mux.HandleFunc("PATCH /api/projects/{projectId}/edit", projectHandler.EditProject)
	mux.HandleFunc("POST /api/projects/{projectId}/complete", projectHandler.CompleteProject)
	mux.HandleFunc("POST /api/projects/{projectId}/request_revision", projectHandler.RequestRevision)
	mux.HandleFunc("POST /api/projects/{projectId}/accept", projectHandler.AcceptWork)

	mux.HandleFunc("POST /api/projects/{projectId}/bids/new", bidHandler.CreateBid)
	mux.HandleFunc("GET /api/projects/{projectId}/bids", bidHandler.GetProjectBids)
	mux.HandleFunc("POST /api/projects/{projectId}/rank_bids", bidHandler.RankBids)
	mux.HandleFunc("POST /api/projects/{projectId}/accept_bid", bidHandler.AcceptBid)

	mux.HandleFunc("POST /api/projects/{projectId}/reviews/new", reviewHandler.PostReview)
	mux.HandleFunc("GET /api/projects/{projectId}/reviews", reviewHandler.GetProjectReviews)

	mux.HandleFunc("GET /api/users/{userId}", userHandler.GetUserProfile)

	mux.Handle("/metrics", promhttp.Handler())

	return withHTTPMetrics(mux)
}

// statusRecorder запоминает код ответа для метрик.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withHTTPMetrics записывает длительность каждого запроса.
func withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		metrics.RecordHTTPRequestDuration(r.Method, r.URL.Path, strconv.Itoa(recorder.status), time.Since(start))
	})
}
