package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
)

type fakeWaiterRepo struct {
	byToken map[string]*models.Waiter
}

func (f *fakeWaiterRepo) Create(w *models.Waiter) error { return nil }
func (f *fakeWaiterRepo) GetByID(uint) (*models.Waiter, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeWaiterRepo) GetByTrackingToken(token string) (*models.Waiter, error) {
	if w, ok := f.byToken[token]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeWaiterRepo) GetByRestaurantID(uint) ([]models.Waiter, error) { return nil, nil }
func (f *fakeWaiterRepo) Update(*models.Waiter) error { return nil }
func (f *fakeWaiterRepo) Deactivate(uint) error { return nil }
func (f *fakeWaiterRepo) Delete(uint) error { return nil }
func (f *fakeWaiterRepo) Count() (int64, error) { return 0, nil }
func (f *fakeWaiterRepo) TokenExists(string) (bool, error) { return false, nil }

type fakeRestaurantRepo struct {
	byID map[uint]*models.Restaurant
}

func (f *fakeRestaurantRepo) Create(*models.Restaurant) error { return nil }
func (f *fakeRestaurantRepo) GetByID(id uint) (*models.Restaurant, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRestaurantRepo) GetByUserID(uint) (*models.Restaurant, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRestaurantRepo) Update(*models.Restaurant) error { return nil }
func (f *fakeRestaurantRepo) UpdatePlanStatus(uint, string, *time.Time) error {
	return nil
}

type fakeClickRepo struct {
	recorded  []*models.Click
	recordErr error
	nextID    uint
}

func (f *fakeClickRepo) RecordClick(c *models.Click) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.nextID++
	c.ID = f.nextID
	f.recorded = append(f.recorded, c)
	return nil
}
func (f *fakeClickRepo) GetByID(uint) (*models.Click, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeClickRepo) GetByUUID(string) (*models.Click, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeClickRepo) MarkConverted(uint, float64) (bool, error) { return false, nil }
func (f *fakeClickRepo) CountByWaiter(uint, time.Time, time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeClickRepo) CountByRestaurant(uint, time.Time, time.Time) ([]repository.WaiterClickCount, error) {
	return nil, nil
}
func (f *fakeClickRepo) Count() (int64, error) { return 0, nil }
func (f *fakeClickRepo) CountConverted() (int64, error) { return 0, nil }

type fakeEnqueuer struct {
	enqueued []uint
	err      error
}

func (f *fakeEnqueuer) EnqueueConversion(clickID uint) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, clickID)
	return nil
}

func newTestService(waiters *fakeWaiterRepo, restaurants *fakeRestaurantRepo, clicks *fakeClickRepo, enq Enqueuer) *Service {
	svc := NewService(waiters, restaurants, clicks, enq)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	waiters := &fakeWaiterRepo{byToken: map[string]*models.Waiter{
		"active-token": {ID: 1, RestaurantID: 10, Name: "Ana", TrackingToken: "active-token", IsActive: true},
		"inactive-token": {
			ID: 2, RestaurantID: 10, Name: "Bruno", TrackingToken: "inactive-token", IsActive: false,
		},
		"expired-token": {
			ID: 3, RestaurantID: 10, Name: "Carla", TrackingToken: "expired-token", IsActive: true,
			TokenExpiresAt: &expired,
		},
		"fresh-token": {
			ID: 4, RestaurantID: 10, Name: "Diego", TrackingToken: "fresh-token", IsActive: true,
			TokenExpiresAt: &future,
		},
		"orphan-token": {ID: 5, RestaurantID: 99, Name: "Eva", TrackingToken: "orphan-token", IsActive: true},
	}}
	restaurants := &fakeRestaurantRepo{byID: map[uint]*models.Restaurant{
		10: {ID: 10, GoogleReviewURL: "https://g.page/r/example/review"},
	}}

	svc := newTestService(waiters, restaurants, &fakeClickRepo{}, nil)

	tests := []struct {
		name    string
		token   string
		wantErr error
		waiter  uint
	}{
		{name: "active token resolves", token: "active-token", waiter: 1},
		{name: "unexpired token resolves", token: "fresh-token", waiter: 4},
		{name: "unknown token", token: "nope", wantErr: ErrLinkNotFound},
		{name: "empty token", token: "", wantErr: ErrLinkNotFound},
		{name: "inactive waiter", token: "inactive-token", wantErr: ErrLinkNotFound},
		{name: "expired token", token: "expired-token", wantErr: ErrLinkNotFound},
		{name: "missing restaurant", token: "orphan-token", wantErr: ErrLinkNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			link, err := svc.Resolve(context.Background(), tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, link)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.waiter, link.WaiterID)
			assert.Equal(t, "https://g.page/r/example/review", link.GoogleReviewURL)
		})
	}
}

func TestRecordClick(t *testing.T) {
	t.Parallel()

	clicks := &fakeClickRepo{}
	enq := &fakeEnqueuer{}
	svc := newTestService(&fakeWaiterRepo{}, &fakeRestaurantRepo{}, clicks, enq)

	link := &ResolvedLink{WaiterID: 1, RestaurantID: 10, GoogleReviewURL: "https://example.com"}
	click, err := svc.RecordClick(context.Background(), link, ClickMeta{IP: "203.0.113.7", UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("RecordClick: %v", err)
	}

	assert.Len(t, clicks.recorded, 1)
	assert.Equal(t, uint(1), click.WaiterID)
	assert.Equal(t, uint(10), click.RestaurantID)
	assert.Equal(t, "203.0.113.7", click.IP)
	assert.NotEmpty(t, click.UUID)
	assert.Equal(t, []uint{click.ID}, enq.enqueued)
}

func TestRecordClickEnqueueFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	clicks := &fakeClickRepo{}
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	svc := newTestService(&fakeWaiterRepo{}, &fakeRestaurantRepo{}, clicks, enq)

	link := &ResolvedLink{WaiterID: 1, RestaurantID: 10}
	_, err := svc.RecordClick(context.Background(), link, ClickMeta{})
	assert.NoError(t, err)
	assert.Len(t, clicks.recorded, 1)
}

func TestRecordClickWithoutEnqueuer(t *testing.T) {
	t.Parallel()

	clicks := &fakeClickRepo{}
	svc := newTestService(&fakeWaiterRepo{}, &fakeRestaurantRepo{}, clicks, nil)

	_, err := svc.RecordClick(context.Background(), &ResolvedLink{WaiterID: 1, RestaurantID: 10}, ClickMeta{})
	assert.NoError(t, err)
}

func TestRecordClickRepositoryError(t *testing.T) {
	t.Parallel()

	clicks := &fakeClickRepo{recordErr: errors.New("deadlock")}
	svc := newTestService(&fakeWaiterRepo{}, &fakeRestaurantRepo{}, clicks, nil)

	_, err := svc.RecordClick(context.Background(), &ResolvedLink{WaiterID: 1, RestaurantID: 10}, ClickMeta{})
	assert.Error(t, err)
}
