package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
)

// Entry is one row of a restaurant's waiter ranking.
type Entry struct {
	Rank        int    `json:"rank"`
	WaiterID    uint   `json:"waiter_id"`
	WaiterName  string `json:"waiter_name"`
	Clicks      int64  `json:"clicks"`
	Conversions int64  `json:"conversions"`
}

// MonthWindow returns the half-open interval [start, end) of the calendar
// month containing now, in the given location. The location is an explicit
// parameter on purpose: "current month" differs between UTC and a
// restaurant's local timezone, and callers must pick one.
func MonthWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	t := now.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	return start, end
}

// PreviousMonthWindow returns the window of the month before the one
// containing now, plus its month/year labels.
func PreviousMonthWindow(now time.Time, loc *time.Location) (start, end time.Time, month, year int) {
	curStart, _ := MonthWindow(now, loc)
	start = curStart.AddDate(0, -1, 0)
	end = curStart
	return start, end, int(start.Month()), start.Year()
}

// DaysUntilEndOfMonth counts the calendar days from now to the end of the
// month, inclusive of today: on the last day of any month it returns 1.
// Counting calendar days instead of dividing a duration keeps the result
// stable across DST transitions.
func DaysUntilEndOfMonth(now time.Time, loc *time.Location) int {
	t := now.In(loc)
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	return lastDay - t.Day() + 1
}

// Service computes waiter rankings from the click log and snapshots monthly
// champions. Rankings are derived by counting Click rows inside the window,
// never from the cached waiter counters.
type Service struct {
	waiters   repository.WaiterRepository
	clicks    repository.ClickRepository
	champions repository.ChampionRepository
	loc       *time.Location
	now       func() time.Time
}

// NewService creates a leaderboard service. The location pins the calendar
// used for month windows; pass time.UTC unless a per-restaurant timezone is
// wired through.
func NewService(
	waiters repository.WaiterRepository,
	clicks repository.ClickRepository,
	champions repository.ChampionRepository,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		waiters:   waiters,
		clicks:    clicks,
		champions: champions,
		loc:       loc,
		now:       time.Now,
	}
}

// Ranking returns the current-month ranking for a restaurant: all listed
// waiters ordered by clicks descending, ties broken by waiter id ascending.
// The tie-break makes the order a deterministic total order across calls.
func (s *Service) Ranking(ctx context.Context, restaurantID uint) ([]Entry, error) {
	start, end := MonthWindow(s.now(), s.loc)
	return s.rankingForWindow(ctx, restaurantID, start, end)
}

func (s *Service) rankingForWindow(ctx context.Context, restaurantID uint, from, to time.Time) ([]Entry, error) {
	_ = ctx
	waiters, err := s.waiters.GetByRestaurantID(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("load waiters: %w", err)
	}

	counts, err := s.clicks.CountByRestaurant(restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	byWaiter := make(map[uint]repository.WaiterClickCount, len(counts))
	for _, c := range counts {
		byWaiter[c.WaiterID] = c
	}

	entries := make([]Entry, 0, len(waiters))
	for _, w := range waiters {
		c := byWaiter[w.ID]
		entries = append(entries, Entry{
			WaiterID:    w.ID,
			WaiterName:  w.Name,
			Clicks:      c.Clicks,
			Conversions: c.Conversions,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Clicks != entries[j].Clicks {
			return entries[i].Clicks > entries[j].Clicks
		}
		return entries[i].WaiterID < entries[j].WaiterID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// SnapshotChampion writes the immutable champion row for the given month if
// the ranking has a leader with at least one click. Re-running it for a month
// that already has a snapshot changes nothing; the compound unique key on
// (restaurant, month, year) guarantees that even under concurrent runs.
func (s *Service) SnapshotChampion(ctx context.Context, restaurantID uint, month, year int) (bool, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 1, 0)

	entries, err := s.rankingForWindow(ctx, restaurantID, start, end)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 || entries[0].Clicks == 0 {
		return false, nil
	}

	leader := entries[0]
	return s.champions.CreateIfNotExists(&models.MonthlyChampion{
		RestaurantID: restaurantID,
		WaiterID:     leader.WaiterID,
		WaiterName:   leader.WaiterName,
		Month:        month,
		Year:         year,
		Clicks:       uint(leader.Clicks),
	})
}

// EnsurePreviousMonthSnapshot snapshots the just-ended month. It runs on the
// read path after a month boundary is crossed and is safe to call on every
// request thanks to SnapshotChampion's idempotency.
func (s *Service) EnsurePreviousMonthSnapshot(ctx context.Context, restaurantID uint) error {
	_, _, month, year := PreviousMonthWindow(s.now(), s.loc)
	_, err := s.SnapshotChampion(ctx, restaurantID, month, year)
	return err
}
