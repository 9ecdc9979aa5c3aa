package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
)

type fakeWaiterRepo struct {
	waiters []models.Waiter
}

func (f *fakeWaiterRepo) Create(*models.Waiter) error { return nil }
func (f *fakeWaiterRepo) GetByID(uint) (*models.Waiter, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeWaiterRepo) GetByTrackingToken(string) (*models.Waiter, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeWaiterRepo) GetByRestaurantID(uint) ([]models.Waiter, error) {
	return f.waiters, nil
}
func (f *fakeWaiterRepo) Update(*models.Waiter) error { return nil }
func (f *fakeWaiterRepo) Deactivate(uint) error { return nil }
func (f *fakeWaiterRepo) Delete(uint) error { return nil }
func (f *fakeWaiterRepo) Count() (int64, error) { return 0, nil }
func (f *fakeWaiterRepo) TokenExists(string) (bool, error) { return false, nil }

type fakeClickRepo struct {
	counts   []repository.WaiterClickCount
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeClickRepo) RecordClick(*models.Click) error { return nil }
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
func (f *fakeClickRepo) CountByRestaurant(_ uint, from, to time.Time) ([]repository.WaiterClickCount, error) {
	f.lastFrom = from
	f.lastTo = to
	return f.counts, nil
}
func (f *fakeClickRepo) Count() (int64, error) { return 0, nil }
func (f *fakeClickRepo) CountConverted() (int64, error) { return 0, nil }

type fakeChampionRepo struct {
	created []*models.MonthlyChampion
}

func (f *fakeChampionRepo) CreateIfNotExists(c *models.MonthlyChampion) (bool, error) {
	for _, existing := range f.created {
		if existing.RestaurantID == c.RestaurantID && existing.Month == c.Month && existing.Year == c.Year {
			return false, nil
		}
	}
	f.created = append(f.created, c)
	return true, nil
}
func (f *fakeChampionRepo) GetByRestaurantID(uint) ([]models.MonthlyChampion, error) {
	return nil, nil
}
func (f *fakeChampionRepo) GetForPeriod(uint, int, int) (*models.MonthlyChampion, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestMonthWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	start, end := MonthWindow(now, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthWindowDependsOnLocation(t *testing.T) {
	t.Parallel()

	// 2025-07-01 01:00 UTC is still June 30th in São Paulo.
	saoPaulo := time.FixedZone("America/Sao_Paulo", -3*60*60)
	now := time.Date(2025, 7, 1, 1, 0, 0, 0, time.UTC)

	utcStart, _ := MonthWindow(now, time.UTC)
	localStart, _ := MonthWindow(now, saoPaulo)

	assert.Equal(t, time.July, utcStart.Month())
	assert.Equal(t, time.June, localStart.Month())
}

func TestPreviousMonthWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		now       time.Time
		wantMonth int
		wantYear  int
	}{
		{now: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), wantMonth: 5, wantYear: 2025},
		{now: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), wantMonth: 12, wantYear: 2024},
		{now: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), wantMonth: 2, wantYear: 2024},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.now.Format("2006-01"), func(t *testing.T) {
			t.Parallel()
			start, end, month, year := PreviousMonthWindow(tc.now, time.UTC)
			assert.Equal(t, tc.wantMonth, month)
			assert.Equal(t, tc.wantYear, year)
			assert.Equal(t, time.Month(tc.wantMonth), start.Month())
			assert.True(t, end.After(start))
		})
	}
}

func TestDaysUntilEndOfMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		now  time.Time
		want int
	}{
		{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), want: 31},
		{now: time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC), want: 1},
		{now: time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC), want: 1},
		{now: time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), want: 2}, // leap year
		{now: time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), want: 1},
		{now: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), want: 1},
		{now: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), want: 16},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.now.Format("2006-01-02"), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, DaysUntilEndOfMonth(tc.now, time.UTC))
		})
	}
}

func newTestService(waiters *fakeWaiterRepo, clicks *fakeClickRepo, champions *fakeChampionRepo, now time.Time) *Service {
	svc := NewService(waiters, clicks, champions, time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRankingOrdersByClicksThenWaiterID(t *testing.T) {
	t.Parallel()

	waiters := &fakeWaiterRepo{waiters: []models.Waiter{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Bruno"},
		{ID: 3, Name: "Carla"},
	}}
	clicks := &fakeClickRepo{counts: []repository.WaiterClickCount{
		{WaiterID: 1, Clicks: 5, Conversions: 2},
		{WaiterID: 2, Clicks: 5, Conversions: 1},
		{WaiterID: 3, Clicks: 3, Conversions: 3},
	}}

	svc := newTestService(waiters, clicks, &fakeChampionRepo{}, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	entries, err := svc.Ranking(context.Background(), 10)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}

	// Ties on clicks resolve by waiter id ascending.
	wantOrder := []uint{1, 2, 3}
	for i, e := range entries {
		assert.Equal(t, wantOrder[i], e.WaiterID, "position %d", i)
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankingIncludesWaitersWithoutClicks(t *testing.T) {
	t.Parallel()

	waiters := &fakeWaiterRepo{waiters: []models.Waiter{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Bruno"},
	}}
	clicks := &fakeClickRepo{counts: []repository.WaiterClickCount{
		{WaiterID: 2, Clicks: 4},
	}}

	svc := newTestService(waiters, clicks, &fakeChampionRepo{}, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	entries, err := svc.Ranking(context.Background(), 10)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}

	assert.Len(t, entries, 2)
	assert.Equal(t, uint(2), entries[0].WaiterID)
	assert.Equal(t, uint(1), entries[1].WaiterID)
	assert.Zero(t, entries[1].Clicks)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestRankingUsesCurrentMonthWindow(t *testing.T) {
	t.Parallel()

	clicks := &fakeClickRepo{}
	svc := newTestService(&fakeWaiterRepo{}, clicks, &fakeChampionRepo{}, time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC))

	_, err := svc.Ranking(context.Background(), 10)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), clicks.lastFrom)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), clicks.lastTo)
}

func TestSnapshotChampion(t *testing.T) {
	t.Parallel()

	waiters := &fakeWaiterRepo{waiters: []models.Waiter{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Bruno"},
	}}
	clicks := &fakeClickRepo{counts: []repository.WaiterClickCount{
		{WaiterID: 2, Clicks: 9, Conversions: 4},
		{WaiterID: 1, Clicks: 3},
	}}
	champions := &fakeChampionRepo{}

	svc := newTestService(waiters, clicks, champions, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	created, err := svc.SnapshotChampion(context.Background(), 10, 5, 2025)
	if err != nil {
		t.Fatalf("SnapshotChampion: %v", err)
	}

	assert.True(t, created)
	if assert.Len(t, champions.created, 1) {
		c := champions.created[0]
		assert.Equal(t, uint(2), c.WaiterID)
		assert.Equal(t, "Bruno", c.WaiterName)
		assert.Equal(t, uint(9), c.Clicks)
		assert.Equal(t, 5, c.Month)
		assert.Equal(t, 2025, c.Year)
	}
}

func TestSnapshotChampionIsIdempotent(t *testing.T) {
	t.Parallel()

	waiters := &fakeWaiterRepo{waiters: []models.Waiter{{ID: 1, Name: "Ana"}}}
	clicks := &fakeClickRepo{counts: []repository.WaiterClickCount{{WaiterID: 1, Clicks: 2}}}
	champions := &fakeChampionRepo{}

	svc := newTestService(waiters, clicks, champions, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		if _, err := svc.SnapshotChampion(context.Background(), 10, 5, 2025); err != nil {
			t.Fatalf("SnapshotChampion run %d: %v", i, err)
		}
	}

	assert.Len(t, champions.created, 1)
}

func TestSnapshotChampionSkipsMonthsWithoutClicks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		waiters []models.Waiter
		counts  []repository.WaiterClickCount
	}{
		{name: "no waiters"},
		{
			name:    "waiters without clicks",
			waiters: []models.Waiter{{ID: 1, Name: "Ana"}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			champions := &fakeChampionRepo{}
			svc := newTestService(
				&fakeWaiterRepo{waiters: tc.waiters},
				&fakeClickRepo{counts: tc.counts},
				champions,
				time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			)

			created, err := svc.SnapshotChampion(context.Background(), 10, 5, 2025)
			assert.NoError(t, err)
			assert.False(t, created)
			assert.Empty(t, champions.created)
		})
	}
}

func TestEnsurePreviousMonthSnapshot(t *testing.T) {
	t.Parallel()

	waiters := &fakeWaiterRepo{waiters: []models.Waiter{{ID: 1, Name: "Ana"}}}
	clicks := &fakeClickRepo{counts: []repository.WaiterClickCount{{WaiterID: 1, Clicks: 7}}}
	champions := &fakeChampionRepo{}

	// January: the previous month crosses the year boundary.
	svc := newTestService(waiters, clicks, champions, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))

	if err := svc.EnsurePreviousMonthSnapshot(context.Background(), 10); err != nil {
		t.Fatalf("EnsurePreviousMonthSnapshot: %v", err)
	}

	if assert.Len(t, champions.created, 1) {
		assert.Equal(t, 12, champions.created[0].Month)
		assert.Equal(t, 2024, champions.created[0].Year)
	}
}
