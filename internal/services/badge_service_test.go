package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/pkg/push"
)

type badgeFixture struct {
	service          *BadgeService
	badgeRepo        *fakeBadgeRepo
	userBadgeRepo    *fakeUserBadgeRepo
	pointsRepo       *fakePointsRepo
	txRepo           *fakeTxRepo
	notificationRepo *fakeNotificationRepo
}

func newBadgeFixture(t *testing.T) *badgeFixture {
	t.Helper()
	f := &badgeFixture{
		badgeRepo:        &fakeBadgeRepo{},
		userBadgeRepo:    newFakeUserBadgeRepo(),
		pointsRepo:       newFakePointsRepo(),
		txRepo:           &fakeTxRepo{},
		notificationRepo: &fakeNotificationRepo{},
	}
	f.service = NewBadgeService(
		f.badgeRepo, f.userBadgeRepo, f.pointsRepo, f.txRepo,
		f.notificationRepo, push.NewMockGateway(), zerolog.Nop(),
	)
	return f
}

func (f *badgeFixture) addBadge(t *testing.T, name string, req models.BadgeRequirement, bonus int) *models.BadgeDefinition {
	t.Helper()
	def := &models.BadgeDefinition{
		Name:          name,
		Requirement:   req,
		PointsAwarded: bonus,
		IsActive:      true,
	}
	require.NoError(t, f.badgeRepo.Create(context.Background(), def))
	return def
}

func aggregateWith(stats models.Stats) *models.UserPointsAggregate {
	return &models.UserPointsAggregate{UserID: "u1", Level: 1, Stats: stats}
}

func TestBadgeAwardedWhenRequirementMet(t *testing.T) {
	f := newBadgeFixture(t)
	f.addBadge(t, "Bookworm", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 10}, 0)

	awarded := f.service.CheckAndAwardBadges(context.Background(), "u1",
		aggregateWith(models.Stats{ArticlesRead: 10}))
	require.Len(t, awarded, 1)
	assert.Equal(t, "Bookworm", awarded[0].Name)
	assert.Equal(t, 1, f.userBadgeRepo.count())
}

func TestBadgeNotAwardedBelowThreshold(t *testing.T) {
	f := newBadgeFixture(t)
	f.addBadge(t, "Bookworm", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 10}, 0)

	awarded := f.service.CheckAndAwardBadges(context.Background(), "u1",
		aggregateWith(models.Stats{ArticlesRead: 9}))
	assert.Empty(t, awarded)
	assert.Equal(t, 0, f.userBadgeRepo.count())
}

func TestBadgeNeverGrantedTwice(t *testing.T) {
	f := newBadgeFixture(t)
	f.addBadge(t, "Bookworm", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 10}, 25)
	agg := aggregateWith(models.Stats{ArticlesRead: 12})

	first := f.service.CheckAndAwardBadges(context.Background(), "u1", agg)
	second := f.service.CheckAndAwardBadges(context.Background(), "u1", agg)

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Equal(t, 1, f.userBadgeRepo.count())
}

func TestBadgeConcurrentEvaluationGrantsOnce(t *testing.T) {
	f := newBadgeFixture(t)
	f.addBadge(t, "Bookworm", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 10}, 25)
	// Aggregate must exist for the bonus increment to land.
	_, err := f.pointsRepo.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	agg := aggregateWith(models.Stats{ArticlesRead: 12})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.service.CheckAndAwardBadges(context.Background(), "u1", agg)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.userBadgeRepo.count(), "a second award for the same pair must never be created")

	bonusEntries := 0
	for _, tx := range f.txRepo.all() {
		if tx.Action == "badge_bonus" {
			bonusEntries++
		}
	}
	assert.Equal(t, 1, bonusEntries, "bonus points are granted by the winning insert only")
	assert.Equal(t, 25, f.pointsRepo.get("u1").TotalPoints)
}

func TestBadgeBonusPointsAndLedger(t *testing.T) {
	f := newBadgeFixture(t)
	def := f.addBadge(t, "Committed", models.BadgeRequirement{Type: models.RequirementStreakDays, Value: 7}, 50)
	_, err := f.pointsRepo.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)

	agg := &models.UserPointsAggregate{
		UserID: "u1",
		Level:  1,
		Streak: models.Streak{Current: 2, Longest: 8},
	}
	awarded := f.service.CheckAndAwardBadges(context.Background(), "u1", agg)
	require.Len(t, awarded, 1)

	stored := f.pointsRepo.get("u1")
	assert.Equal(t, 50, stored.TotalPoints)
	assert.Equal(t, 50, stored.LifetimePoints)

	txs := f.txRepo.all()
	require.Len(t, txs, 1)
	assert.Equal(t, "badge_bonus", txs[0].Action)
	assert.Equal(t, 50, txs[0].Points)
	assert.Equal(t, def.ID.Hex(), txs[0].Metadata["badgeId"])
}

func TestBadgeRequirementVariants(t *testing.T) {
	agg := &models.UserPointsAggregate{
		UserID:         "u1",
		LifetimePoints: 500,
		Level:          4,
		Streak:         models.Streak{Current: 2, Longest: 9},
		Stats: models.Stats{
			ArticlesRead:    20,
			ArticlesLiked:   15,
			CommentsPosted:  8,
			CommentsLiked:   30,
			SharesCompleted: 5,
			Referrals:       3,
			DailyLogins:     12,
		},
		CategoryStats: map[string]int{"sports": 7},
	}

	tests := []struct {
		name string
		req  models.BadgeRequirement
		want bool
	}{
		{"articles_read met", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 20}, true},
		{"articles_liked met", models.BadgeRequirement{Type: models.RequirementArticlesLiked, Value: 10}, true},
		{"comments_posted not met", models.BadgeRequirement{Type: models.RequirementCommentsPosted, Value: 9}, false},
		{"comments_liked met", models.BadgeRequirement{Type: models.RequirementCommentsLiked, Value: 30}, true},
		{"shares met", models.BadgeRequirement{Type: models.RequirementShares, Value: 5}, true},
		{"streak uses longest", models.BadgeRequirement{Type: models.RequirementStreakDays, Value: 9}, true},
		{"total_points uses lifetime", models.BadgeRequirement{Type: models.RequirementTotalPoints, Value: 500}, true},
		{"daily_logins met", models.BadgeRequirement{Type: models.RequirementDailyLogins, Value: 10}, true},
		{"level met", models.BadgeRequirement{Type: models.RequirementLevel, Value: 4}, true},
		{"category met", models.BadgeRequirement{Type: models.RequirementCategoryArticles, Value: 7, Category: "sports"}, true},
		{"category missing", models.BadgeRequirement{Type: models.RequirementCategoryArticles, Value: 1, Category: "tech"}, false},
		{"referrals not met", models.BadgeRequirement{Type: models.RequirementReferrals, Value: 4}, false},
		{"unknown type never matches", models.BadgeRequirement{Type: "mystery_metric", Value: 0}, false},
	}
	f := newBadgeFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.service.meetsRequirement(tt.req, agg))
		})
	}
}

func TestBadgeInactiveDefinitionsIgnored(t *testing.T) {
	f := newBadgeFixture(t)
	def := f.addBadge(t, "Retired", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 1}, 0)
	def.IsActive = false

	awarded := f.service.CheckAndAwardBadges(context.Background(), "u1",
		aggregateWith(models.Stats{ArticlesRead: 100}))
	assert.Empty(t, awarded)
}

func TestBadgeNotificationMarksAwardNotified(t *testing.T) {
	f := newBadgeFixture(t)
	f.addBadge(t, "Bookworm", models.BadgeRequirement{Type: models.RequirementArticlesRead, Value: 1}, 0)

	awarded := f.service.CheckAndAwardBadges(context.Background(), "u1",
		aggregateWith(models.Stats{ArticlesRead: 1}))
	require.Len(t, awarded, 1)

	assert.Eventually(t, func() bool {
		awards, err := f.userBadgeRepo.FindByUserID(context.Background(), "u1")
		if err != nil || len(awards) != 1 {
			return false
		}
		return awards[0].Notified
	}, 2*time.Second, 10*time.Millisecond, "award must be flagged notified after dispatch")
}
