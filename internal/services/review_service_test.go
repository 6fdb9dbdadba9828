package services

import (
	"context"
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeProject проводит проект по всему жизненному циклу до completed.
func completeProject(t *testing.T, env *testEnv, clientUsername, freelancerUsername string) *models.Project {
	t.Helper()

	project := seedOpenProject(t, env, clientUsername)
	bid := placeBid(t, env, project.ID, freelancerUsername, 500, 3)

	_, err := env.bids.AcceptBid(context.Background(), project.ID, clientUsername, models.AcceptBidRequest{BidID: bid.ID})
	require.NoError(t, err)
	_, err = env.projects.CompleteProject(context.Background(), project.ID, freelancerUsername)
	require.NoError(t, err)
	done, err := env.projects.AcceptWork(context.Background(), project.ID, clientUsername)
	require.NoError(t, err)
	return done
}

func TestPostReviewOnlyAfterCompletion(t *testing.T) {
	env := newTestEnv()
	env.store.addClient("client")
	env.store.addFreelancer("alice", 4.0)
	project := seedOpenProject(t, env, "client")

	_, err := env.reviews.PostReview(context.Background(), project.ID, "client", models.ReviewRequest{Rating: 5})
	requireErrorCode(t, err, models.StateConflictErrorCode)
}

func TestPostReviewBothPartiesOnce(t *testing.T) {
	env := newTestEnv()
	client := env.store.addClient("client")
	freelancer := env.store.addFreelancer("alice", 0)
	project := completeProject(t, env, "client", "alice")

	clientReview, err := env.reviews.PostReview(context.Background(), project.ID, "client", models.ReviewRequest{Rating: 5, Comment: "great work"})
	require.NoError(t, err)
	assert.Equal(t, client.ID, clientReview.ReviewerID)
	assert.Equal(t, freelancer.ID, clientReview.RevieweeID)

	freelancerReview, err := env.reviews.PostReview(context.Background(), project.ID, "alice", models.ReviewRequest{Rating: 4, Comment: "clear brief"})
	require.NoError(t, err)
	assert.Equal(t, freelancer.ID, freelancerReview.ReviewerID)
	assert.Equal(t, client.ID, freelancerReview.RevieweeID)

	// повторный отзыв той же стороны отклоняется
	_, err = env.reviews.PostReview(context.Background(), project.ID, "client", models.ReviewRequest{Rating: 1})
	requireErrorCode(t, err, models.DuplicateErrorCode)

	reviews, err := env.reviews.GetProjectReviews(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestPostReviewUpdatesAvgRating(t *testing.T) {
	env := newTestEnv()
	env.store.addClient("client")
	freelancer := env.store.addFreelancer("alice", 0)

	first := completeProject(t, env, "client", "alice")
	_, err := env.reviews.PostReview(context.Background(), first.ID, "client", models.ReviewRequest{Rating: 5})
	require.NoError(t, err)

	second := completeProject(t, env, "client", "alice")
	_, err = env.reviews.PostReview(context.Background(), second.ID, "client", models.ReviewRequest{Rating: 4})
	require.NoError(t, err)

	profile, err := env.users.GetUserProfile(context.Background(), freelancer.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, profile.AvgRating, 1e-9)
}

func TestPostReviewStrangerForbidden(t *testing.T) {
	env := newTestEnv()
	env.store.addClient("client")
	env.store.addFreelancer("alice", 4.0)
	env.store.addFreelancer("mallory", 2.0)
	project := completeProject(t, env, "client", "alice")

	_, err := env.reviews.PostReview(context.Background(), project.ID, "mallory", models.ReviewRequest{Rating: 1})
	requireErrorCode(t, err, models.PermissionErrorCode)
}

func TestPostReviewRatingRange(t *testing.T) {
	env := newTestEnv()
	env.store.addClient("client")
	env.store.addFreelancer("alice", 4.0)
	project := completeProject(t, env, "client", "alice")

	_, err := env.reviews.PostReview(context.Background(), project.ID, "client", models.ReviewRequest{Rating: 0})
	requireErrorCode(t, err, models.ValidationErrorCode)

	_, err = env.reviews.PostReview(context.Background(), project.ID, "client", models.ReviewRequest{Rating: 6})
	requireErrorCode(t, err, models.ValidationErrorCode)
}

func TestPostReviewRequiresUsername(t *testing.T) {
	env := newTestEnv()

	_, err := env.reviews.PostReview(context.Background(), "any", "", models.ReviewRequest{Rating: 5})
	requireErrorCode(t, err, models.ValidationErrorCode)
}
