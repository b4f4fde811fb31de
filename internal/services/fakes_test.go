package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tidesmedia/newsreach-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory doubles for the repository and store interfaces. They copy
// documents on the way in and out so tests catch missing persists, the same
// way a real document store would.

type fakePointsRepo struct {
	mu         sync.Mutex
	aggregates map[string]models.UserPointsAggregate
	getErr     error
	updateErr  error
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{aggregates: map[string]models.UserPointsAggregate{}}
}

func (r *fakePointsRepo) GetOrCreate(ctx context.Context, userID string) (*models.UserPointsAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	agg, ok := r.aggregates[userID]
	if !ok {
		agg = models.UserPointsAggregate{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Level:     1,
			CreatedAt: time.Now(),
		}
		r.aggregates[userID] = agg
	}
	copied := agg
	if agg.CategoryStats != nil {
		copied.CategoryStats = make(map[string]int, len(agg.CategoryStats))
		for k, v := range agg.CategoryStats {
			copied.CategoryStats[k] = v
		}
	}
	return &copied, nil
}

func (r *fakePointsRepo) Update(ctx context.Context, aggregate *models.UserPointsAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.aggregates[aggregate.UserID]; !ok {
		return errors.New("aggregate does not exist")
	}
	r.aggregates[aggregate.UserID] = *aggregate
	return nil
}

func (r *fakePointsRepo) IncrementPoints(ctx context.Context, userID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.aggregates[userID]
	if !ok {
		return errors.New("aggregate does not exist")
	}
	agg.TotalPoints += points
	agg.LifetimePoints += points
	r.aggregates[userID] = agg
	return nil
}

func (r *fakePointsRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.aggregates)), nil
}

func (r *fakePointsRepo) get(userID string) models.UserPointsAggregate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aggregates[userID]
}

func (r *fakePointsRepo) put(agg models.UserPointsAggregate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggregates[agg.UserID] = agg
}

type fakeTxRepo struct {
	mu        sync.Mutex
	entries   []models.PointTransaction
	createErr error
}

func (r *fakeTxRepo) Create(ctx context.Context, transaction *models.PointTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	transaction.ID = primitive.NewObjectID()
	r.entries = append(r.entries, *transaction)
	return nil
}

func (r *fakeTxRepo) FindByUserID(ctx context.Context, userID string, page, limit int) ([]*models.PointTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PointTransaction
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			entry := r.entries[i]
			out = append(out, &entry)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) all() []models.PointTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PointTransaction(nil), r.entries...)
}

type fakeBadgeRepo struct {
	mu     sync.Mutex
	badges []*models.BadgeDefinition
}

func (r *fakeBadgeRepo) Create(ctx context.Context, badge *models.BadgeDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	badge.ID = primitive.NewObjectID()
	r.badges = append(r.badges, badge)
	return nil
}

func (r *fakeBadgeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.BadgeDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.badges {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeBadgeRepo) FindActive(ctx context.Context) ([]*models.BadgeDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BadgeDefinition
	for _, b := range r.badges {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBadgeRepo) Update(ctx context.Context, badge *models.BadgeDefinition) error {
	return nil
}

type fakeUserBadgeRepo struct {
	mu     sync.Mutex
	awards map[string]*models.UserBadgeAward // key: userID + "/" + badgeID hex
}

func newFakeUserBadgeRepo() *fakeUserBadgeRepo {
	return &fakeUserBadgeRepo{awards: map[string]*models.UserBadgeAward{}}
}

func (r *fakeUserBadgeRepo) Create(ctx context.Context, award *models.UserBadgeAward) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := award.UserID + "/" + award.BadgeID.Hex()
	if _, exists := r.awards[key]; exists {
		return false, nil
	}
	award.ID = primitive.NewObjectID()
	copied := *award
	r.awards[key] = &copied
	return true, nil
}

func (r *fakeUserBadgeRepo) FindByUserID(ctx context.Context, userID string) ([]*models.UserBadgeAward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UserBadgeAward
	for _, award := range r.awards {
		if award.UserID == userID {
			copied := *award
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserBadgeRepo) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, award := range r.awards {
		if award.ID == id {
			award.Notified = true
			return nil
		}
	}
	return errors.New("not found")
}

func (r *fakeUserBadgeRepo) SetDisplayed(ctx context.Context, id primitive.ObjectID, displayed bool) error {
	return nil
}

func (r *fakeUserBadgeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.awards)
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) FindByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error {
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

// fakeLimiterStore implements LimiterStore in memory. TTLs are recorded but
// only honored when the test advances clock.
type fakeLimiterStore struct {
	mu        sync.Mutex
	connected bool
	values    map[string]string
	counters  map[string]int64
	failing   bool
}

func newFakeLimiterStore() *fakeLimiterStore {
	return &fakeLimiterStore{
		connected: true,
		values:    map[string]string{},
		counters:  map[string]int64{},
	}
}

func (s *fakeLimiterStore) IsConnected(ctx context.Context) bool { return s.connected }

func (s *fakeLimiterStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return false, errors.New("store down")
	}
	_, ok := s.values[key]
	return ok, nil
}

func (s *fakeLimiterStore) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errors.New("store down")
	}
	s.counters[key]++
	return s.counters[key], nil
}

func (s *fakeLimiterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (s *fakeLimiterStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *fakeLimiterStore) clearCooldowns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
}

// fakeViewCache implements ViewCache in memory.
type fakeViewCache struct {
	mu        sync.Mutex
	connected bool
	values    map[string]string
	deletes   []string
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{connected: true, values: map[string]string{}}
}

func (c *fakeViewCache) IsConnected(ctx context.Context) bool { return c.connected }

func (c *fakeViewCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (c *fakeViewCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeViewCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
		c.deletes = append(c.deletes, key)
	}
	return nil
}

// permitAll and denyAll are trivial Permitter implementations.
type permitAll struct{}

func (permitAll) Permit(ctx context.Context, userID, action string) bool { return true }

type denyAll struct{}

func (denyAll) Permit(ctx context.Context, userID, action string) bool { return false }

// recordingEvaluator captures badge-evaluation invocations.
type recordingEvaluator struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newRecordingEvaluator() *recordingEvaluator {
	return &recordingEvaluator{done: make(chan struct{}, 16)}
}

func (e *recordingEvaluator) CheckAndAwardBadges(ctx context.Context, userID string, aggregate *models.UserPointsAggregate) []*models.BadgeDefinition {
	e.mu.Lock()
	e.calls = append(e.calls, userID)
	e.mu.Unlock()
	e.done <- struct{}{}
	return nil
}
