package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
)

// ErrLinkNotFound is returned for unknown, inactive or expired tracking
// tokens. Callers must not distinguish the three cases to the outside world.
var ErrLinkNotFound = errors.New("tracking link not found")

// ResolvedLink is the outcome of a successful token resolution.
type ResolvedLink struct {
	WaiterID        uint
	RestaurantID    uint
	GoogleReviewURL string
}

// ClickMeta carries request metadata recorded with each click.
type ClickMeta struct {
	IP        string
	UserAgent string
}

// Enqueuer hands a freshly recorded click to the asynchronous conversion
// pipeline. Implementations must not block.
type Enqueuer interface {
	EnqueueConversion(clickID uint) error
}

// Service resolves tracking tokens and records clicks. Resolution is a pure
// read; recording is a single short transaction. Conversion estimation is
// handed off to the Enqueuer and never delays the redirect.
type Service struct {
	waiters     repository.WaiterRepository
	restaurants repository.RestaurantRepository
	clicks      repository.ClickRepository
	enqueuer    Enqueuer
	now         func() time.Time
}

// NewService creates a tracking service from injected repositories. The
// enqueuer may be nil, in which case clicks are recorded without conversion
// estimation.
func NewService(
	waiters repository.WaiterRepository,
	restaurants repository.RestaurantRepository,
	clicks repository.ClickRepository,
	enqueuer Enqueuer,
) *Service {
	return &Service{
		waiters:     waiters,
		restaurants: restaurants,
		clicks:      clicks,
		enqueuer:    enqueuer,
		now:         time.Now,
	}
}

// Resolve maps an opaque tracking token to the waiter, restaurant and review
// target URL. It fails with ErrLinkNotFound when no waiter carries the token,
// the waiter is inactive or soft-deleted, or the token has expired.
func (s *Service) Resolve(ctx context.Context, token string) (*ResolvedLink, error) {
	_ = ctx
	if token == "" {
		return nil, ErrLinkNotFound
	}

	waiter, err := s.waiters.GetByTrackingToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	if !waiter.IsLinkUsable(s.now()) {
		return nil, ErrLinkNotFound
	}

	restaurant, err := s.restaurants.GetByID(waiter.RestaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("resolve restaurant: %w", err)
	}

	return &ResolvedLink{
		WaiterID:        waiter.ID,
		RestaurantID:    restaurant.ID,
		GoogleReviewURL: restaurant.GoogleReviewURL,
	}, nil
}

// RecordClick appends one immutable click row and increments the waiter's
// click counter in the same transaction, then enqueues the click for
// conversion estimation. Enqueue failures are logged, never surfaced: the
// user-facing redirect must not depend on the estimation pipeline.
func (s *Service) RecordClick(ctx context.Context, link *ResolvedLink, meta ClickMeta) (*models.Click, error) {
	_ = ctx
	click := &models.Click{
		UUID:         uuid.New().String(),
		WaiterID:     link.WaiterID,
		RestaurantID: link.RestaurantID,
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
	}

	if err := s.clicks.RecordClick(click); err != nil {
		return nil, fmt.Errorf("record click: %w", err)
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueConversion(click.ID); err != nil {
			log.Warnf("[Tracking] failed to enqueue conversion for click %d: %v", click.ID, err)
		}
	}

	return click, nil
}
